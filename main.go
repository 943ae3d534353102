package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newRootCmd(start time.Time, system *System) *cobra.Command {
	var (
		config      Config
		profilePath string
		list        bool
	)
	cmd := &cobra.Command{
		Use:   "seqbench <namespace> <input> <iterations> <function>...",
		Short: "Sequentially apply functions to a file and measure timings",
		Long: `seqbench reads the input file on every iteration, applies the given
functions from the namespace in order and prints completion time,
initialization overhead, computation time and average service time
in microseconds.`,
		Example: `  seqbench test_functions data.txt 100 identity words
  seqbench --quiet=false --log-level DEBUG hash data.txt 10 sha256 xxhash
  seqbench --workers 4 text data.txt 100 upper lower title
  seqbench --list`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return printRegistry(cmd.OutOrStdout(), system.registry)
			}
			parsed, err := ParseArgs(args)
			if err != nil {
				return err
			}
			config.Namespace, config.Input = parsed.Namespace, parsed.Input
			config.Iterations, config.Functions = parsed.Iterations, parsed.Functions
			if profilePath != "" {
				profile, err := LoadProfile(profilePath)
				if err != nil {
					return err
				}
				profile.Apply(&config, func(field string) bool { return cmd.Flags().Changed(field) })
			}
			if config.Warmup < 0 {
				return fmt.Errorf("warmup must be non-negative, got %v", config.Warmup)
			}
			if config.Workers < 0 {
				return fmt.Errorf("workers must be non-negative, got %v", config.Workers)
			}
			return system.Run(cmd.Context(), config, start, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&config.Quiet, "quiet", true, "suppress logging during the run")
	cmd.Flags().StringVar(&config.LogLevel, "log-level", StringEnv("LOG_LEVEL", "INFO"), "log level when not quiet")
	cmd.Flags().IntVar(&config.Warmup, "warmup", IntEnv("SEQBENCH_WARMUP", 0), "passes over the input before the measurement loop")
	cmd.Flags().IntVar(&config.Workers, "workers", IntEnv("SEQBENCH_WORKERS", 0), "apply functions on a pool of workers, 0 runs sequentially")
	cmd.Flags().BoolVar(&config.ClearCaches, "clear-caches", false, "drop fs caches before the measurement loop")
	cmd.Flags().StringVar(&config.Results, "results", StringEnv("SEQBENCH_RESULTS_DB", ""), "libsql database name or url to save the run into")
	cmd.Flags().StringVar(&profilePath, "config", "", "TOML profile with flag defaults")
	cmd.Flags().BoolVar(&list, "list", false, "print registered namespaces and functions")
	return cmd
}

func printRegistry(w io.Writer, registry *Registry) error {
	for _, name := range registry.Namespaces() {
		namespace, _ := registry.Namespace(name)
		if _, err := fmt.Fprintf(w, "%v: %v\n", name, strings.Join(namespace.Names(), ", ")); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	start := SystemClock.Now()

	if err := LoadEnv(".env"); err != nil {
		Logger.Fatalf("failed to load environment: %v", err)
	}
	SetupLogger()
	system := &System{
		registry: DefaultRegistry(),
		storage: Storage{
			OrgName:   StringEnv("TURSO_ORG_NAME", ""),
			AuthToken: StringEnv("TURSO_AUTH_TOKEN", ""),
		},
		clock: SystemClock,
	}

	if err := newRootCmd(start, system).Execute(); err != nil {
		os.Exit(1)
	}
}
