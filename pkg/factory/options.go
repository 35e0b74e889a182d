// Functional options shared by factories and the factory registry
package factory

import (
	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/generate"
	"github.com/andrewh/botest/pkg/random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// config is the collaborator set a Factory works with. A Registry holds one
// and hands a copy to every factory it builds, so related objects share the
// same generators, repository and random source.
type config struct {
	types     *generate.Registry
	props     *generate.PropRegistry
	factories *Registry
	repo      bo.Repository
	rand      *random.Rand
	logger    *zap.Logger
	tp        trace.TracerProvider
	mp        metric.MeterProvider
}

// Option configures a Factory or Registry.
type Option func(*config)

// WithRegistry sets the type keyed generator registry. The default is
// generate.Default().
func WithRegistry(r *generate.Registry) Option {
	return func(c *config) { c.types = r }
}

// WithPropRegistry sets the property keyed generator registry.
func WithPropRegistry(r *generate.PropRegistry) Option {
	return func(c *config) { c.props = r }
}

// WithFactories sets the registry used to build related objects.
func WithFactories(r *Registry) Option {
	return func(c *config) { c.factories = r }
}

// WithRepository sets where saved objects go. The default is an in-memory
// repository.
func WithRepository(repo bo.Repository) Option {
	return func(c *config) { c.repo = repo }
}

// WithRand sets the random source.
func WithRand(r *random.Rand) Option {
	return func(c *config) { c.rand = r }
}

// WithSeed uses a deterministic random source seeded with seed.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.rand = random.NewSeeded(seed) }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithTracerProvider sets the tracer provider. The default is the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tp = tp }
}

// WithMeterProvider sets the meter provider. The default is the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.mp = mp }
}

func withConfig(src config) Option {
	return func(c *config) { *c = src }
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.types == nil {
		if c.props != nil {
			c.types = c.props.Types()
		} else {
			c.types = generate.Default()
		}
	}
	if c.props == nil {
		c.props = generate.NewPropRegistry(c.types)
	}
	if c.repo == nil {
		c.repo = bo.NewMemoryRepository()
	}
	if c.rand == nil {
		c.rand = random.NewUnseeded()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.tp == nil {
		c.tp = otel.GetTracerProvider()
	}
	if c.mp == nil {
		c.mp = otel.GetMeterProvider()
	}
	return c
}
