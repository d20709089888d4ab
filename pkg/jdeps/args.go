package jdeps

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ritzau/jdeps-cycles/pkg/config"
)

// Options are the jdeps settings that shape the report
type Options struct {
	Verbose       string // package, class or summary
	Filter        string // package, archive, module or none
	FilterPattern string
	LimitPattern  string
	LimitPackages []string
	LimitModules  []string
	MultiRelease  string
	IgnoreMissing bool
	APIOnly       bool
	DotOutput     string
	Transitive    bool
	ClassPath     []string
	Classes       string
}

// OptionsFromConfig extracts the jdeps options from the application config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Verbose:       cfg.Verbose,
		Filter:        cfg.Filter,
		FilterPattern: cfg.FilterPattern,
		LimitPattern:  cfg.LimitPattern,
		LimitPackages: cfg.LimitPackages,
		LimitModules:  cfg.LimitModules,
		MultiRelease:  cfg.MultiRelease,
		IgnoreMissing: cfg.IgnoreMissing,
		APIOnly:       cfg.APIOnly,
		DotOutput:     cfg.DotOutput,
		Transitive:    cfg.Transitive,
		ClassPath:     cfg.ClassPath,
		Classes:       cfg.Classes,
	}
}

// BuildArgs returns the jdeps command line for the options.
// A limit pattern takes precedence over package limits, which take
// precedence over module limits.
func BuildArgs(o Options) []string {
	verbose := o.Verbose
	if verbose == "" {
		verbose = "package"
	}
	filter := o.Filter
	if filter == "" {
		filter = "package"
	}

	var args []string
	if verbose == "summary" {
		args = append(args, "-summary")
	} else {
		args = append(args, "-verbose:"+verbose)
	}
	args = append(args, "-filter:"+filter)

	switch {
	case o.LimitPattern != "":
		args = append(args, "--regex", o.LimitPattern)
	case len(o.LimitPackages) > 0:
		for _, pkg := range o.LimitPackages {
			args = append(args, "--package", pkg)
		}
	case len(o.LimitModules) > 0:
		for _, module := range o.LimitModules {
			args = append(args, "--require", module)
		}
	}

	if o.FilterPattern != "" {
		args = append(args, "-filter", o.FilterPattern)
	}
	if o.LimitPattern != "" {
		args = append(args, "-include", o.LimitPattern)
	}
	if o.MultiRelease != "" {
		args = append(args, "--multi-release", o.MultiRelease)
	}
	if o.IgnoreMissing {
		args = append(args, "--ignore-missing-deps")
	}
	if o.APIOnly {
		args = append(args, "--api-only")
	}
	if o.DotOutput != "" {
		args = append(args, "--dot-output", o.DotOutput)
	}

	if o.Transitive {
		args = append(args, o.ClassPath...)
	} else if len(o.ClassPath) > 0 {
		args = append(args, "--class-path", strings.Join(o.ClassPath, string(os.PathListSeparator)))
	}

	return append(args, o.Classes)
}

// ResolveBinary picks the jdeps executable: an explicit path wins, then
// $JAVA_HOME/bin/jdeps, then whatever is on PATH.
func ResolveBinary(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidate := filepath.Join(home, "bin", "jdeps")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "jdeps"
}
