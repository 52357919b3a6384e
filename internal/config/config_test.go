package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestCacheBase_XDGSet(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	got := cacheBase()
	want := filepath.Join("/custom/cache", "refdocs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheBase_HomeDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	got := cacheBase()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}
	want := filepath.Join(home, ".cache", "refdocs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheBase_TmpFallback(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")
	got := cacheBase()
	if !strings.Contains(got, "refdocs") {
		t.Errorf("expected refdocs in path, got %q", got)
	}
}

func TestParseTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"lib", Target{Kind: "lib"}, false},
		{" bin:pai-engine ", Target{Kind: "bin", Name: "pai-engine"}, false},
		{"bin:", Target{}, true},
		{"dylib", Target{}, true},
	}

	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTarget(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestTargetString(t *testing.T) {
	t.Parallel()
	if got := (Target{Kind: "bin", Name: "x"}).String(); got != "bin:x" {
		t.Errorf("got %q, want %q", got, "bin:x")
	}
	if got := (Target{Kind: "lib"}).String(); got != "lib" {
		t.Errorf("got %q, want %q", got, "lib")
	}
}

// isolate points the config search path at an empty directory and clears
// global viper state.
func isolate(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ext != ".mdx" {
		t.Errorf("got ext %q, want %q", cfg.Ext, ".mdx")
	}
	if want := []string{"CI", "VERCEL", "NETLIFY"}; !reflect.DeepEqual(cfg.CIEnv, want) {
		t.Errorf("got ci_env %v, want %v", cfg.CIEnv, want)
	}
	if want := []Target{{Kind: "lib"}}; !reflect.DeepEqual(cfg.Rustdoc.Targets, want) {
		t.Errorf("got targets %v, want %v", cfg.Rustdoc.Targets, want)
	}
	if cfg.Rustdoc.Toolchain != "+nightly" {
		t.Errorf("got toolchain %q", cfg.Rustdoc.Toolchain)
	}
	if cfg.Rustdoc.JSONName != "engine" {
		t.Errorf("got json name %q, want %q", cfg.Rustdoc.JSONName, "engine")
	}
	if !cfg.Proto.UseTool {
		t.Error("proto.use_tool should default to true")
	}
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("REFDOCS_RUSTDOC_TARGETS", "lib,bin:pai-engine")
	t.Setenv("REFDOCS_RUSTDOC_CRATE_NAME", "pai-engine")
	t.Setenv("REFDOCS_CI_ENV", "CI, BUILDKITE")
	t.Setenv("REFDOCS_STRICT", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := []Target{{Kind: "lib"}, {Kind: "bin", Name: "pai-engine"}}
	if !reflect.DeepEqual(cfg.Rustdoc.Targets, want) {
		t.Errorf("got targets %v, want %v", cfg.Rustdoc.Targets, want)
	}
	if cfg.Rustdoc.JSONName != "pai_engine" {
		t.Errorf("got json name %q, want %q", cfg.Rustdoc.JSONName, "pai_engine")
	}
	if want := []string{"CI", "BUILDKITE"}; !reflect.DeepEqual(cfg.CIEnv, want) {
		t.Errorf("got ci_env %v, want %v", cfg.CIEnv, want)
	}
	if !cfg.Strict {
		t.Error("expected strict from environment")
	}
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "refdocs.toml")
	content := `ext = ".md"

[proto]
dir = "schema"
cross_check = true

[rustdoc]
targets = ["bin:server"]
link_base = "/reference/rust"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ext != ".md" || cfg.Proto.Dir != "schema" || !cfg.Proto.CrossCheck {
		t.Errorf("got %+v", cfg)
	}
	if want := []Target{{Kind: "bin", Name: "server"}}; !reflect.DeepEqual(cfg.Rustdoc.Targets, want) {
		t.Errorf("got targets %v, want %v", cfg.Rustdoc.Targets, want)
	}
	if cfg.Rustdoc.LinkBase != "/reference/rust" {
		t.Errorf("got link base %q", cfg.Rustdoc.LinkBase)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_BadTarget(t *testing.T) {
	isolate(t)
	t.Setenv("REFDOCS_RUSTDOC_TARGETS", "lib,cdylib")
	if _, err := Load(""); err == nil {
		t.Error("expected error for invalid target")
	}
}
