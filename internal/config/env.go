package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts true/1/yes and false/0/no, case-insensitively.
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// applyEnvOverrides reads PICALC_<NAME> for every setting not given on the
// command line. Unparsable values are ignored.
//
//	PICALC_LIBRARY, PICALC_ALGO, PICALC_PRECISION, PICALC_THREADS,
//	PICALC_SERIES, PICALC_SCHEME, PICALC_RATIOS, PICALC_REFERENCE,
//	PICALC_TIMEOUT, PICALC_PORT, PICALC_OUTPUT, PICALC_LOG_LEVEL,
//	PICALC_CALIBRATE_THREADS, PICALC_CSV, PICALC_JSON, PICALC_QUIET,
//	PICALC_VERBOSE, PICALC_DETAILS, PICALC_SERVER, PICALC_NO_COLOR,
//	PICALC_CALIBRATE, PICALC_CONFIG
func applyEnvOverrides(cfg *AppConfig, set map[string]bool) {
	strs := []struct {
		flag, env string
		dst       *string
	}{
		{"library", "LIBRARY", &cfg.Library},
		{"algo", "ALGO", &cfg.Algo},
		{"series", "SERIES", &cfg.Series},
		{"scheme", "SCHEME", &cfg.Scheme},
		{"ratios", "RATIOS", &cfg.RatiosPath},
		{"reference", "REFERENCE", &cfg.ReferencePath},
		{"port", "PORT", &cfg.Port},
		{"o", "OUTPUT", &cfg.OutputFile},
		{"log-level", "LOG_LEVEL", &cfg.LogLevel},
	}
	for _, s := range strs {
		if !set[s.flag] {
			*s.dst = getEnvString(s.env, *s.dst)
		}
	}

	ints := []struct {
		flag, env string
		dst       *int
	}{
		{"precision", "PRECISION", &cfg.Precision},
		{"threads", "THREADS", &cfg.Threads},
		{"calibrate-threads", "CALIBRATE_THREADS", &cfg.CalibrateThreads},
	}
	for _, i := range ints {
		if !set[i.flag] {
			*i.dst = getEnvInt(i.env, *i.dst)
		}
	}

	bools := []struct {
		flag, env string
		dst       *bool
	}{
		{"csv", "CSV", &cfg.CSV},
		{"json", "JSON", &cfg.JSONOutput},
		{"q", "QUIET", &cfg.Quiet},
		{"v", "VERBOSE", &cfg.Verbose},
		{"d", "DETAILS", &cfg.Details},
		{"server", "SERVER", &cfg.ServerMode},
		{"no-color", "NO_COLOR", &cfg.NoColor},
		{"calibrate", "CALIBRATE", &cfg.Calibrate},
	}
	for _, b := range bools {
		if !set[b.flag] {
			*b.dst = getEnvBool(b.env, *b.dst)
		}
	}

	if !set["timeout"] {
		cfg.Timeout = getEnvDuration("TIMEOUT", cfg.Timeout)
	}
}
