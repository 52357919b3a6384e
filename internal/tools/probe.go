package tools

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
)

// Capabilities is the snapshot of installed tools taken once per run.
type Capabilities struct {
	ProtocGenDoc bool
	Protoc       bool
	Cargo        bool
	CI           bool
}

// ProtoTool reports whether .proto files can be handed to protoc-gen-doc.
func (c Capabilities) ProtoTool() bool {
	return c.Protoc && c.ProtocGenDoc
}

// Probe checks for protoc-gen-doc and cargo concurrently. A probe that errors
// counts as absent; Probe itself never fails.
func Probe(ctx context.Context, r Runner, ciEnv []string) Capabilities {
	caps := Capabilities{CI: InCI(ciEnv)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, errPlugin := r.LookPath("protoc-gen-doc")
		_, errProtoc := r.LookPath("protoc")
		caps.ProtocGenDoc = errPlugin == nil
		caps.Protoc = errProtoc == nil
		return nil
	})
	g.Go(func() error {
		_, err := r.Run(ctx, "", "cargo", "--version")
		caps.Cargo = err == nil
		return nil
	})
	_ = g.Wait()

	slog.Debug("probed tools",
		"protoc", caps.Protoc,
		"protoc_gen_doc", caps.ProtocGenDoc,
		"cargo", caps.Cargo,
		"ci", caps.CI)
	return caps
}

// InCI reports whether any of the named environment variables is set to a
// non-empty value.
func InCI(names []string) bool {
	for _, name := range names {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
