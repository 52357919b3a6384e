package cmd

import (
	"github.com/spf13/cobra"
)

var protoCmd = &cobra.Command{
	Use:   "proto",
	Short: "Generate API pages from .proto files",
	Long: `Generate one page per .proto file in the configured directory.

protoc-gen-doc is used when protoc and the plugin are installed; otherwise the
built-in parser renders the page. A missing proto directory produces a
placeholder page.`,
	Run: runProto,
}

func init() {
	protoCmd.Flags().String("dir", "", "directory containing .proto files")
	protoCmd.Flags().String("out", "", "output directory for pages")
	protoCmd.Flags().Bool("no-tool", false, "never delegate to protoc-gen-doc")
	protoCmd.Flags().Bool("cross-check", false, "compare parsed files against compiled descriptors")

	bindFlags(protoCmd, false, map[string]string{
		"dir":         "proto.dir",
		"out":         "proto.output_dir",
		"cross-check": "proto.cross_check",
	})
}

func runProto(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if noTool, _ := cmd.Flags().GetBool("no-tool"); noTool {
		cfg.Proto.UseTool = false
	}

	d := newDriver(cmd.Context(), cfg)
	report, err := d.RunProto(cmd.Context())
	finish(report, err, cfg.Strict)
}
