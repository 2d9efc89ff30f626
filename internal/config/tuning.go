package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/optofluidics/trackpause/internal/motion"
	"github.com/optofluidics/trackpause/internal/units"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/trackpause.defaults.toml"

// DatabaseEnv overrides the database path when set.
const DatabaseEnv = "TRACKPAUSE_DB"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// AnalysisConfig is the on-disk configuration of an analysis run. Every
// field is optional; the Get* methods supply defaults for omitted ones, so
// partial configs are safe.
type AnalysisConfig struct {
	// Segmentation params
	VelocityThreshold    *float64 `json:"velocity_threshold,omitempty" toml:"velocity_threshold"`
	MinConsecutiveFrames *int     `json:"min_consecutive_frames,omitempty" toml:"min_consecutive_frames"`
	SmoothingWindow      *int     `json:"smoothing_window,omitempty" toml:"smoothing_window"`
	VelocityFormula      *string  `json:"velocity_formula,omitempty" toml:"velocity_formula"` // "euclidean" or "legacy-dzdx"

	// Execution
	Workers  *int    `json:"workers,omitempty" toml:"workers"`
	Database *string `json:"database,omitempty" toml:"database"`

	// Reporting
	SpaceUnits *string `json:"space_units,omitempty" toml:"space_units"`
	TimeUnits  *string `json:"time_units,omitempty" toml:"time_units"`
	LogLevel   *string `json:"log_level,omitempty" toml:"log_level"`
	JSONLogs   *bool   `json:"json_logs,omitempty" toml:"json_logs"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields set to nil.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with every field populated.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		VelocityThreshold:    ptrFloat64(motion.DefaultVelocityThreshold),
		MinConsecutiveFrames: ptrInt(motion.DefaultMinConsecutiveFrames),
		SmoothingWindow:      ptrInt(motion.DefaultSmoothingWindow),
		VelocityFormula:      ptrString(motion.Euclidean.String()),
		Workers:              ptrInt(runtime.GOMAXPROCS(0)),
		Database:             ptrString("trackpause.db"),
		SpaceUnits:           ptrString(units.Micron),
		TimeUnits:            ptrString(units.Second),
		LogLevel:             ptrString("info"),
		JSONLogs:             ptrBool(false),
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a .json or .toml file.
// The file must be under 1MB. The loaded config is validated.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".toml" {
		return nil, fmt.Errorf("config file must have .json or .toml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories and
// panics if the file cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/trackpause/ and deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *AnalysisConfig) Validate() error {
	if c.VelocityThreshold != nil {
		v := *c.VelocityThreshold
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("velocity_threshold must be positive, got %v", v)
		}
	}
	if c.MinConsecutiveFrames != nil && *c.MinConsecutiveFrames <= 0 {
		return fmt.Errorf("min_consecutive_frames must be positive, got %d", *c.MinConsecutiveFrames)
	}
	if c.SmoothingWindow != nil && *c.SmoothingWindow < 0 {
		return fmt.Errorf("smoothing_window must be non-negative, got %d", *c.SmoothingWindow)
	}
	if c.VelocityFormula != nil {
		if _, err := motion.ParseVelocityFormula(*c.VelocityFormula); err != nil {
			return fmt.Errorf("invalid velocity_formula: %w", err)
		}
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.SpaceUnits != nil && !units.IsValidSpace(*c.SpaceUnits) {
		return fmt.Errorf("invalid space_units %q: expected one of %s", *c.SpaceUnits, units.GetValidSpaceUnitsString())
	}
	if c.TimeUnits != nil && !units.IsValidTime(*c.TimeUnits) {
		return fmt.Errorf("invalid time_units %q: expected one of %s", *c.TimeUnits, units.GetValidTimeUnitsString())
	}
	if c.LogLevel != nil {
		if _, err := logrus.ParseLevel(*c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level: %w", err)
		}
	}
	return nil
}

// ToParams converts the config into analysis parameters. It does not
// validate them; motion.Params.Validate does that before any track runs.
func (c *AnalysisConfig) ToParams() (motion.Params, error) {
	formula, err := motion.ParseVelocityFormula(c.GetVelocityFormula())
	if err != nil {
		return motion.Params{}, err
	}
	return motion.Params{
		VelocityThreshold:    c.GetVelocityThreshold(),
		MinConsecutiveFrames: c.GetMinConsecutiveFrames(),
		SmoothingWindow:      c.GetSmoothingWindow(),
		Formula:              formula,
	}, nil
}

func (c *AnalysisConfig) GetVelocityThreshold() float64 {
	if c.VelocityThreshold == nil {
		return motion.DefaultVelocityThreshold
	}
	return *c.VelocityThreshold
}

func (c *AnalysisConfig) GetMinConsecutiveFrames() int {
	if c.MinConsecutiveFrames == nil {
		return motion.DefaultMinConsecutiveFrames
	}
	return *c.MinConsecutiveFrames
}

func (c *AnalysisConfig) GetSmoothingWindow() int {
	if c.SmoothingWindow == nil {
		return motion.DefaultSmoothingWindow
	}
	return *c.SmoothingWindow
}

func (c *AnalysisConfig) GetVelocityFormula() string {
	if c.VelocityFormula == nil || *c.VelocityFormula == "" {
		return motion.Euclidean.String()
	}
	return *c.VelocityFormula
}

// GetWorkers returns the worker count; 0 or unset means GOMAXPROCS.
func (c *AnalysisConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return *c.Workers
}

// GetDatabase returns the database path. DatabaseEnv wins over the file.
func (c *AnalysisConfig) GetDatabase() string {
	if env := os.Getenv(DatabaseEnv); env != "" {
		return env
	}
	if c.Database == nil || *c.Database == "" {
		return "trackpause.db"
	}
	return *c.Database
}

func (c *AnalysisConfig) GetSpaceUnits() string {
	if c.SpaceUnits == nil || *c.SpaceUnits == "" {
		return units.Micron
	}
	return *c.SpaceUnits
}

func (c *AnalysisConfig) GetTimeUnits() string {
	if c.TimeUnits == nil || *c.TimeUnits == "" {
		return units.Second
	}
	return *c.TimeUnits
}

func (c *AnalysisConfig) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return "info"
	}
	return *c.LogLevel
}

func (c *AnalysisConfig) GetJSONLogs() bool {
	if c.JSONLogs == nil {
		return false
	}
	return *c.JSONLogs
}
