package cmd

import (
	"github.com/spf13/cobra"
)

var htmlCmd = &cobra.Command{
	Use:   "html",
	Short: "Build standard rustdoc HTML into the public directory",
	Run:   runHTML,
}

func init() {
	htmlCmd.Flags().String("out", "", "public directory for the HTML docs")
	bindFlags(htmlCmd, false, map[string]string{"out": "html.output_dir"})
}

func runHTML(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	d := newDriver(cmd.Context(), cfg)
	report, err := d.RunHTML(cmd.Context())
	finish(report, err, cfg.Strict)
}
