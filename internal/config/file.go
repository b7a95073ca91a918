package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/picalc/internal/errors"
)

// FileConfig is the content of a configuration file. Absent keys leave the
// corresponding setting untouched.
type FileConfig struct {
	Library          *string `yaml:"library" toml:"library"`
	Algo             *string `yaml:"algo" toml:"algo"`
	Precision        *int    `yaml:"precision" toml:"precision"`
	Threads          *int    `yaml:"threads" toml:"threads"`
	Series           *string `yaml:"series" toml:"series"`
	Scheme           *string `yaml:"scheme" toml:"scheme"`
	Ratios           *string `yaml:"ratios" toml:"ratios"`
	Reference        *string `yaml:"reference" toml:"reference"`
	Timeout          *string `yaml:"timeout" toml:"timeout"`
	Port             *string `yaml:"port" toml:"port"`
	LogLevel         *string `yaml:"log_level" toml:"log_level"`
	CalibrateThreads *int    `yaml:"calibrate_threads" toml:"calibrate_threads"`
	CSV              *bool   `yaml:"csv" toml:"csv"`
	JSON             *bool   `yaml:"json" toml:"json"`
	Details          *bool   `yaml:"details" toml:"details"`
	NoColor          *bool   `yaml:"no_color" toml:"no_color"`

	timeout time.Duration
}

// LoadFile reads a configuration file; the format follows the extension
// (.yaml, .yml or .toml).
func LoadFile(path string) (*FileConfig, error) {
	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewResourceError(path, err)
	}

	var fc FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".toml":
		_, err = toml.Decode(string(data), &fc)
	default:
		return nil, apperrors.NewConfigError("unsupported configuration file extension %q (use .yaml, .yml or .toml)", ext)
	}
	if err != nil {
		return nil, apperrors.NewConfigError("failed to parse %s: %v", path, err)
	}

	if fc.Timeout != nil {
		if fc.timeout, err = time.ParseDuration(*fc.Timeout); err != nil {
			return nil, apperrors.NewConfigError("invalid timeout in %s: %v", path, err)
		}
	}
	return &fc, nil
}

func setString(dst *string, src *string, skip bool) {
	if src != nil && !skip {
		*dst = *src
	}
}

func setInt(dst *int, src *int, skip bool) {
	if src != nil && !skip {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool, skip bool) {
	if src != nil && !skip {
		*dst = *src
	}
}

// apply copies the file values onto cfg, except for settings given on the
// command line.
func (fc *FileConfig) apply(cfg *AppConfig, set map[string]bool) {
	setString(&cfg.Library, fc.Library, set["library"])
	setString(&cfg.Algo, fc.Algo, set["algo"])
	setInt(&cfg.Precision, fc.Precision, set["precision"])
	setInt(&cfg.Threads, fc.Threads, set["threads"])
	setString(&cfg.Series, fc.Series, set["series"])
	setString(&cfg.Scheme, fc.Scheme, set["scheme"])
	setString(&cfg.RatiosPath, fc.Ratios, set["ratios"])
	setString(&cfg.ReferencePath, fc.Reference, set["reference"])
	setString(&cfg.Port, fc.Port, set["port"])
	setString(&cfg.LogLevel, fc.LogLevel, set["log-level"])
	setInt(&cfg.CalibrateThreads, fc.CalibrateThreads, set["calibrate-threads"])
	setBool(&cfg.CSV, fc.CSV, set["csv"])
	setBool(&cfg.JSONOutput, fc.JSON, set["json"])
	setBool(&cfg.Details, fc.Details, set["d"])
	setBool(&cfg.NoColor, fc.NoColor, set["no-color"])
	if fc.Timeout != nil && !set["timeout"] {
		cfg.Timeout = fc.timeout
	}
}
