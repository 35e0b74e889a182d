// Business object test data generator
// Reads YAML class definitions and builds valid, optionally persisted, objects
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd builds the command tree. Each tree has its own viper instance so
// flags, BOTEST_* environment variables and an optional config file resolve
// independently per invocation.
func rootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BOTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var configFile string
	root := &cobra.Command{
		Use:          "botest",
		Short:        "Business object test data generator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("binding flags: %w", err)
			}
			if configFile == "" {
				return nil
			}
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config %s: %w", configFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file with flag defaults (yaml, json or toml)")

	root.AddCommand(validateCmd())
	root.AddCommand(generateCmd(v))
	root.AddCommand(versionCmd())

	return root
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <classes.yaml>",
		Short: "Parse and validate class definitions",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("missing class definition file\n\nUsage: botest validate <classes.yaml>")
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := bo.LoadClassDefs(args[0])
			if err != nil {
				return err
			}
			classes := defs.All()
			label := "classes"
			if len(classes) == 1 {
				label = "class"
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Class definitions valid: %d %s\n\n", len(classes), label)

			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Class", "Primary key", "Properties", "Compulsory", "Relationships", "Rules"})
			for _, c := range classes {
				var keys []string
				for _, p := range c.PrimaryKeyProps() {
					keys = append(keys, p.Name)
				}
				compulsory := 0
				for _, p := range c.Props() {
					if p.Compulsory {
						compulsory++
					}
				}
				t.AppendRow(table.Row{
					c.Name, strings.Join(keys, ", "), len(c.Props()), compulsory,
					len(c.Relationships()), len(c.InterPropRules()),
				})
			}
			t.Render()

			if len(classes) > 0 {
				_, _ = fmt.Fprintf(w, "\nTo generate objects:\n  botest generate --class %s %s\n", classes[0].Name, args[0])
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "botest %s (commit: %s, built: %s)\n", version, commit, buildTime)
		},
	}
}
