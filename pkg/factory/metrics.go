// Factory instrumentation: object and value counters plus creation latency
// Uses the OTel Metrics API with the class name as the only attribute
package factory

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/andrewh/botest/pkg/factory"

// instruments records what the factories produce.
type instruments struct {
	duration  metric.Float64Histogram
	created   metric.Int64Counter
	generated metric.Int64Counter
	repaired  metric.Int64Counter
}

func newInstruments(mp metric.MeterProvider) (*instruments, error) {
	meter := mp.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("botest.object.create.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Time to build one valid business object, including related objects"),
	)
	if err != nil {
		return nil, err
	}

	created, err := meter.Int64Counter("botest.objects.created",
		metric.WithDescription("Number of valid business objects built"),
	)
	if err != nil {
		return nil, err
	}

	generated, err := meter.Int64Counter("botest.values.generated",
		metric.WithDescription("Number of property values produced by generators"),
	)
	if err != nil {
		return nil, err
	}

	repaired, err := meter.Int64Counter("botest.rules.repaired",
		metric.WithDescription("Number of inter-property rule violations repaired"),
	)
	if err != nil {
		return nil, err
	}

	return &instruments{
		duration:  duration,
		created:   created,
		generated: generated,
		repaired:  repaired,
	}, nil
}

func classAttr(class string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("botest.class", class))
}

func (m *instruments) objectCreated(ctx context.Context, class string, elapsed time.Duration) {
	attrs := classAttr(class)
	m.created.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

func (m *instruments) valueGenerated(ctx context.Context, class string) {
	m.generated.Add(ctx, 1, classAttr(class))
}

func (m *instruments) ruleRepaired(ctx context.Context, class string) {
	m.repaired.Add(ctx, 1, classAttr(class))
}
