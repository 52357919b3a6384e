package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Target selects which crate target a type graph is emitted for.
type Target struct {
	// Kind is "lib" or "bin".
	Kind string
	// Name is the binary name. Empty for lib.
	Name string
}

func (t Target) String() string {
	if t.Kind == "bin" {
		return "bin:" + t.Name
	}
	return t.Kind
}

// ParseTarget accepts "lib" or "bin:<name>".
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "lib":
		return Target{Kind: "lib"}, nil
	case strings.HasPrefix(s, "bin:") && len(s) > len("bin:"):
		return Target{Kind: "bin", Name: strings.TrimPrefix(s, "bin:")}, nil
	default:
		return Target{}, fmt.Errorf("invalid target %q: want lib or bin:<name>", s)
	}
}

type ProtoConfig struct {
	Dir        string `mapstructure:"dir"`
	OutputDir  string `mapstructure:"output_dir"`
	UseTool    bool   `mapstructure:"use_tool"`
	CrossCheck bool   `mapstructure:"cross_check"`
}

type RustdocConfig struct {
	CrateDir     string   `mapstructure:"crate_dir"`
	CrateName    string   `mapstructure:"crate_name"`
	JSONName     string   `mapstructure:"json_name"`
	Toolchain    string   `mapstructure:"toolchain"`
	Targets      []Target `mapstructure:"targets"`
	OutputDir    string   `mapstructure:"output_dir"`
	RuntimeTitle string   `mapstructure:"runtime_title"`
	LinkBase     string   `mapstructure:"link_base"`
	Archive      bool     `mapstructure:"archive"`
}

type HTMLConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

type Config struct {
	Ext     string        `mapstructure:"ext"`
	Strict  bool          `mapstructure:"strict"`
	CIEnv   []string      `mapstructure:"ci_env"`
	Proto   ProtoConfig   `mapstructure:"proto"`
	Rustdoc RustdocConfig `mapstructure:"rustdoc"`
	HTML    HTMLConfig    `mapstructure:"html"`
}

// cacheBase returns the base cache directory for refdocs.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/refdocs as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "refdocs")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "refdocs")
	}
	return filepath.Join(os.TempDir(), "refdocs")
}

// CASDir returns the path to the content-addressable storage directory.
func CASDir() string {
	return filepath.Join(cacheBase(), "cas")
}

// InitializeViper registers defaults, the environment binding and the config
// file. An explicit file must exist; the search path may come up empty.
func InitializeViper(file string) error {
	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName("refdocs")
		viper.SetConfigType("toml")

		viper.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "refdocs"))
		} else if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "refdocs"))
		}
	}

	viper.SetDefault("ext", ".mdx")
	viper.SetDefault("strict", false)
	viper.SetDefault("ci_env", []string{"CI", "VERCEL", "NETLIFY"})

	viper.SetDefault("proto.dir", "engine/proto")
	viper.SetDefault("proto.output_dir", "docs/src/content/docs/reference")
	viper.SetDefault("proto.use_tool", true)
	viper.SetDefault("proto.cross_check", false)

	viper.SetDefault("rustdoc.crate_dir", "engine")
	viper.SetDefault("rustdoc.crate_name", "engine")
	viper.SetDefault("rustdoc.json_name", "")
	viper.SetDefault("rustdoc.toolchain", "+nightly")
	viper.SetDefault("rustdoc.targets", "lib")
	viper.SetDefault("rustdoc.output_dir", "docs/src/content/docs/reference/rust")
	viper.SetDefault("rustdoc.runtime_title", "")
	viper.SetDefault("rustdoc.link_base", "")
	viper.SetDefault("rustdoc.archive", false)

	viper.SetDefault("html.output_dir", "docs/public/reference/rustdoc/html")

	viper.SetEnvPrefix("REFDOCS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func stringToTargetHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(Target{}) {
			return data, nil
		}
		if f.Kind() == reflect.String {
			return ParseTarget(data.(string))
		}
		return data, nil
	}
}

func Load(file string) (*Config, error) {
	if err := InitializeViper(file); err != nil {
		return nil, err
	}
	return decode(viper.AllSettings())
}

func decode(settings map[string]interface{}) (*Config, error) {
	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			stringToTargetHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for i, name := range config.CIEnv {
		config.CIEnv[i] = strings.TrimSpace(name)
	}
	if config.Rustdoc.JSONName == "" {
		config.Rustdoc.JSONName = strings.ReplaceAll(config.Rustdoc.CrateName, "-", "_")
	}
	return &config, nil
}
