package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jcdickinson/refdocs/internal/pipeline"
	"github.com/spf13/cobra"
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the proto and rustdoc pipelines (and optionally html)",
	Run:   runAll,
}

var allHTML bool

func init() {
	allCmd.Flags().BoolVar(&allHTML, "html", false, "also build rustdoc HTML")
}

func runAll(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := cmd.Context()
	d := newDriver(ctx, cfg)

	runs := []func() (*pipeline.Report, error){
		func() (*pipeline.Report, error) { return d.RunProto(ctx) },
		func() (*pipeline.Report, error) { return d.RunRustdoc(ctx, pipeline.RustdocRequest{}) },
	}
	if allHTML {
		runs = append(runs, func() (*pipeline.Report, error) { return d.RunHTML(ctx) })
	}

	failed := false
	for _, run := range runs {
		report, err := run()
		var werr *pipeline.WriteError
		if errors.As(err, &werr) {
			slog.Error("aborting", "error", err)
			os.Exit(1)
		}
		report.Print(os.Stdout)
		if err := status(report, err, cfg.Strict); err != nil {
			slog.Error("run failed", "run", report.Kind, "error", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	fmt.Println("all documentation generated")
}
