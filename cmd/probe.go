package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Show which external tools are available",
	Run:   runProbe,
}

func runProbe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	caps := newDriver(cmd.Context(), cfg).Caps()

	fmt.Printf("protoc:          %s\n", present(caps.Protoc))
	fmt.Printf("protoc-gen-doc:  %s\n", present(caps.ProtocGenDoc))
	fmt.Printf("cargo:           %s\n", present(caps.Cargo))
	fmt.Printf("ci environment:  %t\n", caps.CI)
	if caps.ProtoTool() {
		fmt.Println("proto pages:     protoc-gen-doc")
	} else {
		fmt.Println("proto pages:     built-in parser")
	}
}

func present(ok bool) string {
	if ok {
		return "found"
	}
	return "not found"
}
