package calibration

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sys/cpu"
	"gopkg.in/yaml.v3"
)

const (
	// CurrentProfileVersion changes whenever the profile layout does.
	CurrentProfileVersion = 1

	// DefaultProfileFileName is the profile name in the home directory.
	DefaultProfileFileName = ".picalc_calibration.yaml"
)

// CalibrationProfile records a sampling run together with the hardware it
// ran on, so that a later run can rebuild the ratio table without
// sampling again.
type CalibrationProfile struct {
	CPUModel  string   `yaml:"cpu_model"`
	NumCPU    int      `yaml:"num_cpu"`
	GOARCH    string   `yaml:"goarch"`
	GOOS      string   `yaml:"goos"`
	GoVersion string   `yaml:"go_version"`
	Features  []string `yaml:"cpu_features,omitempty"`

	Precision  int              `yaml:"precision"`
	Iterations int              `yaml:"iterations"`
	MaxThreads int              `yaml:"max_threads"`
	RatiosPath string           `yaml:"ratios_path,omitempty"`
	Segments   []ProfileSegment `yaml:"segments"`

	CalibratedAt    time.Time `yaml:"calibrated_at"`
	CalibrationTime string    `yaml:"calibration_time"`
	ProfileVersion  int       `yaml:"profile_version"`
}

// ProfileSegment is a SegmentCost in nanoseconds.
type ProfileSegment struct {
	Start   int   `yaml:"start"`
	End     int   `yaml:"end"`
	SeedNS  int64 `yaml:"seed_ns"`
	TermsNS int64 `yaml:"terms_ns"`
}

// GetDefaultProfilePath returns the profile path in the home directory, or
// in the working directory when there is no home.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// NewProfile describes the current machine.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		CPUModel:       fmt.Sprintf("%s-%d-cores", runtime.GOARCH, runtime.NumCPU()),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		Features:       cpuFeatures(),
		CalibratedAt:   time.Now(),
		ProfileVersion: CurrentProfileVersion,
	}
}

// cpuFeatures lists the arithmetic extensions that change the cost of big
// number multiplication.
func cpuFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.X86.HasBMI2, "bmi2")
	add(cpu.X86.HasADX, "adx")
	add(cpu.ARM64.HasASIMD, "asimd")
	add(cpu.ARM64.HasSVE, "sve")
	return features
}

// SetCosts stores a sampled cost profile.
func (p *CalibrationProfile) SetCosts(c CostProfile) {
	p.Precision = c.Precision
	p.Iterations = c.Iterations
	p.CalibrationTime = c.Duration.String()
	p.Segments = make([]ProfileSegment, len(c.Segments))
	for i, s := range c.Segments {
		p.Segments[i] = ProfileSegment{
			Start:   s.Start,
			End:     s.End,
			SeedNS:  s.Seed.Nanoseconds(),
			TermsNS: s.Terms.Nanoseconds(),
		}
	}
}

// Costs rebuilds the sampled cost profile.
func (p *CalibrationProfile) Costs() CostProfile {
	c := CostProfile{
		Precision:  p.Precision,
		Iterations: p.Iterations,
		Segments:   make([]SegmentCost, len(p.Segments)),
	}
	c.Duration, _ = time.ParseDuration(p.CalibrationTime)
	for i, s := range p.Segments {
		c.Segments[i] = SegmentCost{
			Start: s.Start,
			End:   s.End,
			Seed:  time.Duration(s.SeedNS),
			Terms: time.Duration(s.TermsNS),
		}
	}
	return c
}

// LoadProfile reads a profile. An empty path selects the default one.
//
// Parameters:
//   - path: The profile location.
//
// Returns:
//   - *CalibrationProfile: The decoded profile.
//   - error: An error if the file cannot be read or parsed.
func LoadProfile(path string) (*CalibrationProfile, error) {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var profile CalibrationProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile writes the profile. An empty path selects the default one.
func (p *CalibrationProfile) SaveProfile(path string) error {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// IsValid reports whether the profile was recorded on matching hardware
// and holds samples.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil || p.ProfileVersion != CurrentProfileVersion {
		return false
	}
	if p.NumCPU != runtime.NumCPU() || p.GOARCH != runtime.GOARCH {
		return false
	}
	if !slices.Equal(p.Features, cpuFeatures()) {
		return false
	}
	return p.Iterations > 0 && len(p.Segments) > 0
}

// IsStale reports whether the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

func (p *CalibrationProfile) String() string {
	if p == nil {
		return "<nil profile>"
	}
	return fmt.Sprintf("CalibrationProfile{CPU: %s, Precision: %d, Segments: %d, Threads: %d, Calibrated: %s}",
		p.CPUModel, p.Precision, len(p.Segments), p.MaxThreads, p.CalibratedAt.Format(time.RFC3339))
}

// LoadOrCreateProfile returns the stored profile when it is valid for this
// machine, and a fresh one otherwise.
//
// Parameters:
//   - path: The profile location. An empty path selects the default one.
//
// Returns:
//   - *CalibrationProfile: The stored or fresh profile.
//   - bool: True if the stored profile was reused.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	profile, err := LoadProfile(path)
	if err != nil || !profile.IsValid() {
		return NewProfile(), false
	}
	return profile, true
}
