// Generate command: builds, saves and prints valid objects of one class
// Wires the factory registry to the store, logger and telemetry exporters
package main

import (
	"context"
	"fmt"
	"io"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/factory"
	"github.com/andrewh/botest/pkg/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type generateOptions struct {
	class    string
	count    int
	seed     uint64
	allProps bool
	driver   string
	dsn      string
	format   string
	trace    bool
	metrics  bool
	verbose  bool
}

func generateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <classes.yaml>",
		Short: "Build valid business objects of a class",
		Long: "Build valid business objects of a class and print them.\n\n" +
			"Related objects required by compulsory relationships are built and saved too.\n" +
			"With --store the objects are persisted to SQLite or PostgreSQL.\n" +
			"Every flag can also be set with a BOTEST_ environment variable, e.g. BOTEST_SEED=42.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("missing class definition file\n\nUsage: botest generate --class <name> <classes.yaml>")
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := generateOptions{
				class:    v.GetString("class"),
				count:    v.GetInt("count"),
				seed:     v.GetUint64("seed"),
				allProps: v.GetBool("all-props"),
				driver:   v.GetString("store"),
				dsn:      v.GetString("dsn"),
				format:   v.GetString("format"),
				trace:    v.GetBool("trace"),
				metrics:  v.GetBool("metrics"),
				verbose:  v.GetBool("verbose"),
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}

	cmd.Flags().String("class", "", "class of the objects to build (required)")
	cmd.Flags().Int("count", 1, "number of objects to build")
	cmd.Flags().Uint64("seed", 0, "random seed for reproducibility (0 = random)")
	cmd.Flags().Bool("all-props", false, "generate every property, not only compulsory ones")
	cmd.Flags().String("store", "", "persist objects with this driver: sqlite or pgx")
	cmd.Flags().String("dsn", "botest.db", "data source name for --store")
	cmd.Flags().String("format", "table", "output format: table or json")
	cmd.Flags().Bool("trace", false, "write factory spans to stderr")
	cmd.Flags().Bool("metrics", false, "write factory metrics to stderr when the run ends")
	cmd.Flags().BoolP("verbose", "v", false, "log factory activity to stderr")

	return cmd
}

func runGenerate(ctx context.Context, out, errOut io.Writer, defsPath string, opts generateOptions) error {
	if opts.class == "" {
		return fmt.Errorf("missing --class")
	}
	if opts.count < 0 {
		return fmt.Errorf("--count must be non-negative, got %d", opts.count)
	}
	render, err := renderer(opts.format)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	defs, err := bo.LoadClassDefs(defsPath)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.verbose {
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(errOut),
			zapcore.DebugLevel,
		)
		logger = zap.New(core, zap.Development())
		defer func() { _ = logger.Sync() }()
	}

	factoryOpts := []factory.Option{factory.WithLogger(logger)}
	if opts.seed != 0 {
		factoryOpts = append(factoryOpts, factory.WithSeed(opts.seed))
	}

	if opts.trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(errOut), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("creating trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		defer func() { _ = tp.Shutdown(context.Background()) }()
		factoryOpts = append(factoryOpts, factory.WithTracerProvider(tp))
	}

	if opts.metrics {
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(errOut), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("creating metric exporter: %w", err)
		}
		// Shutdown flushes the final collection to the exporter.
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
		defer func() { _ = mp.Shutdown(context.Background()) }()
		factoryOpts = append(factoryOpts, factory.WithMeterProvider(mp))
	}

	if opts.driver != "" {
		s, err := store.Open(ctx, opts.driver, opts.dsn, defs, store.WithLogger(logger))
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		factoryOpts = append(factoryOpts, factory.WithRepository(s))
	}

	reg := factory.NewRegistry(defs, factoryOpts...)
	f, err := reg.Resolve(opts.class)
	if err != nil {
		return err
	}
	if opts.allProps {
		f.WithValueForAllProps()
	}

	objs := make([]*bo.Object, 0, opts.count)
	for range opts.count {
		obj, err := f.CreateSavedBusinessObject(ctx)
		if err != nil {
			return err
		}
		objs = append(objs, obj)
	}
	logger.Info("generated business objects",
		zap.String("class", opts.class),
		zap.Int("count", len(objs)),
	)
	return render(out, f.Class(), objs)
}
