// Package config defines the run configuration of picalc and builds it from
// command-line flags, positional compatibility arguments, PICALC_*
// environment variables and an optional YAML or TOML file.
package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/partition"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/series"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "PICALC_"

// AlgoAll selects comparison mode over the whole catalog of a library.
const AlgoAll = "all"

// Defaults.
const (
	DefaultLibrary          = "GMP"
	DefaultAlgo             = "5"
	DefaultPrecision        = 1000
	DefaultThreads          = 1
	DefaultTimeout          = 5 * time.Minute
	DefaultPort             = "8080"
	DefaultLogLevel         = "warn"
	DefaultCalibrateThreads = partition.MaxRatioThreads
)

// AppConfig holds every setting of a run.
type AppConfig struct {
	// Library is GMP or MPFR.
	Library string
	// Algo is a catalog id of Library, or "all".
	Algo string
	// Precision is the number of decimals to compute.
	Precision int
	// Threads is the requested worker count.
	Threads int
	// CSV prints one machine-readable line instead of the report.
	CSV bool
	// Series and Scheme select a custom combination instead of a catalog id.
	Series string
	Scheme string
	// RatiosPath is the cheater ratio table; empty means the bundled one.
	RatiosPath string
	// ReferencePath is the file holding the known digits of π.
	ReferencePath string
	Timeout       time.Duration
	JSONOutput    bool
	Quiet         bool
	// Verbose prints the computed digits.
	Verbose bool
	// Details adds bits, workers and the verification summary to the report.
	Details    bool
	OutputFile string
	ServerMode bool
	Port       string
	NoColor    bool
	// Calibrate rebuilds the ratio table instead of computing π.
	Calibrate bool
	// CalibrateThreads bounds the thread counts covered by calibration.
	CalibrateThreads int
	LogLevel         string
	// ConfigFile is the YAML or TOML file read before environment overrides.
	ConfigFile string
	// Completion prints the completion script of a shell and exits.
	Completion string
}

// IsComparison reports whether every algorithm of the library runs.
func (c AppConfig) IsComparison() bool {
	return c.Algo == AlgoAll && c.Series == ""
}

// IsCustom reports whether a free series and scheme combination was chosen.
func (c AppConfig) IsCustom() bool {
	return c.Series != ""
}

// CalculationOptions converts the configuration into calculator options.
func (c AppConfig) CalculationOptions() pi.Options {
	return pi.Options{Threads: c.Threads, RatiosPath: c.RatiosPath}
}

// Algorithms resolves the algorithms the configuration selects.
func (c AppConfig) Algorithms() ([]pi.Algorithm, error) {
	lib, err := pi.ParseLibrary(c.Library)
	if err != nil {
		return nil, err
	}
	if c.IsCustom() {
		kind, err := series.ParseKind(c.Series)
		if err != nil {
			return nil, apperrors.NewConfigError("%v", err)
		}
		scheme := partition.Block
		if c.Scheme != "" {
			if scheme, err = partition.ParseScheme(c.Scheme); err != nil {
				return nil, apperrors.NewConfigError("%v", err)
			}
		}
		return []pi.Algorithm{pi.Custom(lib, kind, scheme)}, nil
	}
	if c.Algo == AlgoAll {
		return pi.Algorithms(lib), nil
	}
	id, err := strconv.Atoi(c.Algo)
	if err != nil {
		return nil, apperrors.NewConfigErrorWithSuggestion(
			fmt.Sprintf("invalid algorithm %q.", c.Algo),
			"Use a numeric id or 'all'.")
	}
	alg, err := pi.Lookup(lib, id)
	if err != nil {
		return nil, err
	}
	return []pi.Algorithm{alg}, nil
}

// Validate checks the consistency of the configuration. Precision and
// thread limits are left to the calculator, which owns those messages.
func (c AppConfig) Validate() error {
	if _, err := c.Algorithms(); err != nil {
		return err
	}
	if !c.IsCustom() && c.Scheme != "" {
		return apperrors.NewConfigError("-scheme requires -series")
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.CSV && c.JSONOutput {
		return apperrors.NewConfigError("-csv and -json cannot be combined")
	}
	if c.CalibrateThreads < 1 || c.CalibrateThreads > partition.MaxRatioThreads {
		return apperrors.NewConfigError("calibration threads must be between 1 and %d: %d",
			partition.MaxRatioThreads, c.CalibrateThreads)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	return nil
}

func (c *AppConfig) normalize() {
	c.Library = strings.ToUpper(strings.TrimSpace(c.Library))
	c.Algo = strings.ToLower(strings.TrimSpace(c.Algo))
	c.Series = strings.ToLower(strings.TrimSpace(c.Series))
	c.Scheme = strings.TrimSpace(c.Scheme)
}

// ParseConfig builds the configuration from args (without the program
// name). Sources are applied in increasing priority: defaults, the
// configuration file, the environment, then flags and positional arguments.
//
// It returns flag.ErrHelp when -h was given.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	cfg := AppConfig{}
	fs.StringVar(&cfg.Library, "library", DefaultLibrary, "Arithmetic flavour: GMP or MPFR.")
	fs.StringVar(&cfg.Algo, "algo", DefaultAlgo, "Algorithm id of the library, or 'all' to compare them.")
	fs.IntVar(&cfg.Precision, "precision", DefaultPrecision, "Number of decimals to compute.")
	fs.IntVar(&cfg.Threads, "threads", DefaultThreads, "Number of worker threads.")
	fs.BoolVar(&cfg.CSV, "csv", false, "Print a single CSV line.")
	fs.StringVar(&cfg.Series, "series", "", "Series for a custom run ("+strings.Join(series.Kinds(), ", ")+").")
	fs.StringVar(&cfg.Scheme, "scheme", "", "Partition scheme for a custom run ("+strings.Join(partition.Names(), ", ")+").")
	fs.StringVar(&cfg.RatiosPath, "ratios", "", "Ratio table of the cheater scheme.")
	fs.StringVar(&cfg.ReferencePath, "reference", "", "File holding the reference digits of π.")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Quiet mode: print the digits only.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Alias for -q.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Print the computed digits.")
	fs.BoolVar(&cfg.Details, "d", false, "Show bits, workers and verification details.")
	fs.BoolVar(&cfg.Details, "details", false, "Alias for -d.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Write the computed digits to a file.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Alias for -o.")
	fs.BoolVar(&cfg.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&cfg.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR).")
	fs.BoolVar(&cfg.Calibrate, "calibrate", false, "Measure this machine and write a new ratio table.")
	fs.IntVar(&cfg.CalibrateThreads, "calibrate-threads", DefaultCalibrateThreads, "Largest thread count covered by calibration.")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level ("+strings.Join(logging.Levels, ", ")+").")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML or TOML configuration file.")
	fs.StringVar(&cfg.Completion, "completion", "", "Print a completion script (bash, zsh, fish, powershell).")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	set := explicitFlags(fs)
	if err := applyPositional(&cfg, fs.Args(), set); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}

	if !set["config"] {
		cfg.ConfigFile = getEnvString("CONFIG", cfg.ConfigFile)
	}
	if cfg.ConfigFile != "" {
		file, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return AppConfig{}, err
		}
		file.apply(&cfg, set)
	}

	applyEnvOverrides(&cfg, set)

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}
	return cfg, nil
}

// explicitFlags returns the names of the flags given on the command line.
// Aliases mark their canonical name too.
func explicitFlags(fs *flag.FlagSet) map[string]bool {
	aliases := map[string]string{"quiet": "q", "details": "d", "output": "o"}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
		if canonical, ok := aliases[f.Name]; ok {
			set[canonical] = true
		}
	})
	return set
}

// applyPositional handles the compatibility form
// "LIBRARY ALGORITHM PRECISION THREADS [-csv]".
func applyPositional(cfg *AppConfig, args []string, set map[string]bool) error {
	if len(args) == 0 {
		return nil
	}
	if len(args) < 4 || len(args) > 5 {
		return apperrors.NewConfigErrorWithSuggestion(
			fmt.Sprintf("expected 4 positional arguments, got %d.", len(args)),
			"Usage: picalc LIBRARY ALGORITHM PRECISION THREADS [-csv]")
	}
	precision, err := strconv.Atoi(args[2])
	if err != nil {
		return apperrors.NewConfigError("invalid precision %q", args[2])
	}
	threads, err := strconv.Atoi(args[3])
	if err != nil {
		return apperrors.NewConfigError("invalid thread count %q", args[3])
	}
	if len(args) == 5 {
		if args[4] != "-csv" && args[4] != "--csv" {
			return apperrors.NewConfigError("unexpected argument %q", args[4])
		}
		cfg.CSV = true
		set["csv"] = true
	}
	cfg.Library = args[0]
	cfg.Algo = args[1]
	cfg.Precision = precision
	cfg.Threads = threads
	for _, name := range []string{"library", "algo", "precision", "threads"} {
		set[name] = true
	}
	return nil
}
