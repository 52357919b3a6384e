package cmd

import (
	"github.com/jcdickinson/refdocs/internal/pipeline"
	"github.com/spf13/cobra"
)

var rustdocCmd = &cobra.Command{
	Use:   "rustdoc",
	Short: "Generate module pages from rustdoc JSON",
	Long: `Generate one page per module of the crate's rustdoc type graph.

By default each configured target is emitted with cargo's nightly JSON
backend. Pre-emitted graphs can be passed with --json, published crates with
--crate, and previously archived graphs replayed with --from-archive; none of
these need a toolchain. Without cargo the command succeeds with no output in
CI and fails elsewhere.`,
	Example: `  refdocs rustdoc
  refdocs rustdoc --json target/doc/pai_engine_lib.json
  refdocs rustdoc --crate serde@1.0.200 --link-base /reference/rust`,
	Run: runRustdoc,
}

var rustdocReq pipeline.RustdocRequest

func init() {
	rustdocCmd.Flags().StringSliceVar(&rustdocReq.JSON, "json", nil, "pre-emitted type graph (.json or .json.zst), repeatable")
	rustdocCmd.Flags().StringSliceVar(&rustdocReq.Crates, "crate", nil, "published crate to fetch from docs.rs, as name[@version]")
	rustdocCmd.Flags().BoolVar(&rustdocReq.FromArchive, "from-archive", false, "render the last archived graph of each target")
	rustdocCmd.Flags().String("out", "", "output directory for pages")
	rustdocCmd.Flags().String("link-base", "", "site path pages are served under, enables intra-doc links")
	rustdocCmd.Flags().Bool("archive", false, "archive emitted graphs in the local store")

	bindFlags(rustdocCmd, false, map[string]string{
		"out":       "rustdoc.output_dir",
		"link-base": "rustdoc.link_base",
		"archive":   "rustdoc.archive",
	})
}

func runRustdoc(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	d := newDriver(cmd.Context(), cfg)
	report, err := d.RunRustdoc(cmd.Context(), rustdocReq)
	finish(report, err, cfg.Strict)
}
