package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcdickinson/refdocs/internal/config"
	"github.com/jcdickinson/refdocs/internal/pipeline"
	"github.com/jcdickinson/refdocs/internal/tools"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	debug      bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "refdocs",
	Short: "Generate reference documentation pages from .proto files and rustdoc JSON",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the run between inputs.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./refdocs.toml)")
	rootCmd.PersistentFlags().Bool("strict", false, "exit non-zero when any input fails")
	rootCmd.PersistentFlags().String("ext", ".mdx", "page file extension")

	bindFlags(rootCmd, true, map[string]string{
		"strict": "strict",
		"ext":    "ext",
	})

	rootCmd.AddCommand(protoCmd)
	rootCmd.AddCommand(rustdocCmd)
	rootCmd.AddCommand(htmlCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(probeCmd)
}

// bindFlags lets flags override config keys when set on the command line.
// keys maps flag names to config keys.
func bindFlags(cmd *cobra.Command, persistent bool, keys map[string]string) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for name, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			log.Fatalf("binding flag %s: %v", name, err)
		}
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

func newDriver(ctx context.Context, cfg *config.Config) *pipeline.Driver {
	return pipeline.New(ctx, cfg, tools.ExecRunner{})
}

// status folds a run's error and report into the command outcome. A CI skip
// is a success.
func status(r *pipeline.Report, err error, strict bool) error {
	if errors.Is(err, pipeline.ErrSkippedCI) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.Err(strict)
}

// finish prints the report and exits non-zero when the run failed.
func finish(r *pipeline.Report, err error, strict bool) {
	if r != nil {
		r.Print(os.Stdout)
	}
	if err := status(r, err, strict); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}
