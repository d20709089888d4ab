package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// DefaultFile is the config file read from the working directory
	DefaultFile = "jdeps-cycles.toml"

	envPrefix = "JDEPS_CYCLES_"
)

// Run modes
const (
	ModeCycles = "cycles" // detect and report dependency cycles
	ModeReport = "report" // pass the jdeps report through to the log or a file
)

// Config holds all configuration for the application
type Config struct {
	// jdeps invocation
	JDeps         string   `koanf:"jdeps"`
	Classes       string   `koanf:"classes"`
	ClassPath     []string `koanf:"classpath"`
	Verbose       string   `koanf:"verbose"`
	Filter        string   `koanf:"filter"`
	FilterPattern string   `koanf:"filter-pattern"`
	LimitPattern  string   `koanf:"limit-pattern"`
	LimitPackages []string `koanf:"limit-packages"`
	LimitModules  []string `koanf:"limit-modules"`
	MultiRelease  string   `koanf:"multi-release"`
	IgnoreMissing bool     `koanf:"ignore-missing"`
	Transitive    bool     `koanf:"transitive"`
	APIOnly       bool     `koanf:"api-only"`
	DotOutput     string   `koanf:"dot-output"`

	// What to do with the output
	Mode         string `koanf:"mode"`
	Input        string `koanf:"input"`
	Output       string `koanf:"output"`
	JSON         string `koanf:"json"`
	Console      bool   `koanf:"console"`
	Color        bool   `koanf:"color"`
	FailOnCycles bool   `koanf:"fail-on-cycles"`

	// Logging
	LogLevel string `koanf:"log-level"`
	LogJSON  bool   `koanf:"log-json"`

	// Long-running modes
	Web         bool          `koanf:"web"`
	Port        int           `koanf:"port"`
	Watch       bool          `koanf:"watch"`
	QuietPeriod time.Duration `koanf:"quiet-period"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"jdeps":          "",
		"classes":        "target/classes",
		"classpath":      []string{},
		"verbose":        "package",
		"filter":         "archive",
		"filter-pattern": "",
		"limit-pattern":  "",
		"limit-packages": []string{},
		"limit-modules":  []string{},
		"multi-release":  "",
		"ignore-missing": false,
		"transitive":     false,
		"api-only":       false,
		"dot-output":     "",
		"mode":           ModeCycles,
		"input":          "",
		"output":         "",
		"json":           "",
		"console":        false,
		"color":          true,
		"fail-on-cycles": false,
		"log-level":      "info",
		"log-json":       false,
		"web":            false,
		"port":           8080,
		"watch":          false,
		"quiet-period":   "500ms",
	}
}

// NewFlagSet creates the command line flags understood by Load
func NewFlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)

	f.String("config", DefaultFile, "Path to the TOML config file")

	f.String("jdeps", "", "Path to the jdeps executable (default: $JAVA_HOME/bin/jdeps or jdeps on PATH)")
	f.String("classes", "target/classes", "Directory or archive to analyze")
	f.StringSlice("classpath", nil, "Class path entries to resolve dependencies against")
	f.String("verbose", "package", "jdeps verbosity: package, class or summary")
	f.String("filter", "archive", "jdeps filter level: package, archive, module or none")
	f.String("filter-pattern", "", "Filter out dependencies matching this pattern")
	f.String("limit-pattern", "", "Only analyze dependencies matching this pattern")
	f.StringSlice("limit-packages", nil, "Only analyze dependencies on these packages")
	f.StringSlice("limit-modules", nil, "Only analyze dependencies on these modules")
	f.String("multi-release", "", "Version to use for multi-release archives")
	f.Bool("ignore-missing", false, "Ignore missing dependencies")
	f.Bool("transitive", false, "Analyze class path entries as well instead of only resolving against them")
	f.Bool("api-only", false, "Restrict analysis to public API dependencies")
	f.String("dot-output", "", "Directory for DOT files (report mode)")

	f.String("mode", ModeCycles, "Run mode: cycles or report")
	f.String("input", "", "Read a saved jdeps report from this file instead of running jdeps (- for stdin)")
	f.String("output", "", "Write the jdeps report to this file (report mode)")
	f.String("json", "", "Write the cycle report as JSON to this file")
	f.Bool("console", false, "Print cycles to the console instead of the log")
	f.Bool("color", true, "Colorize console output")
	f.Bool("fail-on-cycles", false, "Exit with status 1 when cycles are found")

	f.String("log-level", "info", "Log level: trace, debug, info, warn or error")
	f.Bool("log-json", false, "Log in JSON format")

	f.Bool("web", false, "Serve the latest report over HTTP")
	f.Int("port", 8080, "Port for the web server (only used with --web)")
	f.Bool("watch", false, "Re-run the analysis when classes change")
	f.Duration("quiet-period", 500*time.Millisecond, "Quiet period before a watch-triggered run")

	return f
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional) - only an explicitly requested file must exist
	path, explicit := configPath(f)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// Prefix: JDEPS_CYCLES_ (e.g., JDEPS_CYCLES_LOG_LEVEL=debug)
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}

		// A positional argument names the classes to analyze
		if f.NArg() > 0 {
			if err := k.Set("classes", f.Arg(0)); err != nil {
				return nil, fmt.Errorf("failed to set classes: %w", err)
			}
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks option values that jdeps would otherwise reject late
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeCycles, ModeReport:
	default:
		return fmt.Errorf("invalid mode %q: want %s or %s", c.Mode, ModeCycles, ModeReport)
	}

	switch c.Verbose {
	case "package", "class", "summary":
	default:
		return fmt.Errorf("invalid verbose level %q", c.Verbose)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	return nil
}

// configPath returns the config file to read and whether it was set explicitly
func configPath(f *pflag.FlagSet) (string, bool) {
	if f == nil {
		return DefaultFile, false
	}
	flag := f.Lookup("config")
	if flag == nil {
		return DefaultFile, false
	}
	return flag.Value.String(), flag.Changed
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
