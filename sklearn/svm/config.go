package svm

import (
	"math"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

// Default hyperparameters.
const (
	DefaultC             = 1.0
	DefaultTol           = 1e-4
	DefaultMaxPasses     = 10
	DefaultMaxIterations = 10000
	DefaultAlphaTol      = 1e-6
)

// SMO step thresholds. A candidate pair is skipped when its box [L, H] is
// narrower than boxEpsilon or when alpha_j would move by less than stepEpsilon.
const (
	boxEpsilon  = 1e-4
	stepEpsilon = 1e-3
)

// Config holds the hyperparameters of an SVC.
//
// The zero value is not usable; start from DefaultConfig and override fields.
type Config struct {
	// C bounds every alpha to [0, C].
	C float64 `json:"c" yaml:"c"`
	// Tol is the KKT violation tolerance.
	Tol float64 `json:"tol" yaml:"tol"`
	// MaxPasses is the number of consecutive sweeps without any update after
	// which training is considered converged.
	MaxPasses int `json:"max_passes" yaml:"max_passes"`
	// MaxIterations caps the total number of sweeps.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// AlphaTol is the threshold above which a row is kept as a support vector.
	AlphaTol float64 `json:"alpha_tol" yaml:"alpha_tol"`
	// Kernel selects the similarity function.
	Kernel kernel.Config `json:"kernel" yaml:"kernel"`
	// Whitening enables per-feature min/max scaling to [0,1].
	Whitening bool `json:"whitening" yaml:"whitening"`
	// Seed seeds the partner-selection generator when no RandomSource is
	// injected. Zero draws a fresh seed for every new estimator.
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultConfig returns the documented defaults: C=1, tol=1e-4, 10 passes,
// 10000 iterations, alphaTol=1e-6, linear kernel, whitening enabled.
func DefaultConfig() Config {
	return Config{
		C:             DefaultC,
		Tol:           DefaultTol,
		MaxPasses:     DefaultMaxPasses,
		MaxIterations: DefaultMaxIterations,
		AlphaTol:      DefaultAlphaTol,
		Kernel:        kernel.DefaultConfig(),
		Whitening:     true,
	}
}

// Validate reports the first invalid hyperparameter as an ErrInvalidInput error.
func (c Config) Validate() error {
	if !(c.C > 0) || math.IsInf(c.C, 0) {
		return errors.NewValidationError("C", "must be positive and finite", c.C)
	}
	if !(c.Tol >= 0) || math.IsInf(c.Tol, 0) {
		return errors.NewValidationError("tol", "must be non-negative and finite", c.Tol)
	}
	if c.MaxPasses < 1 {
		return errors.NewValidationError("max_passes", "must be at least 1", c.MaxPasses)
	}
	if c.MaxIterations < 1 {
		return errors.NewValidationError("max_iterations", "must be at least 1", c.MaxIterations)
	}
	if !(c.AlphaTol >= 0) || math.IsInf(c.AlphaTol, 0) {
		return errors.NewValidationError("alpha_tol", "must be non-negative and finite", c.AlphaTol)
	}
	return c.Kernel.Validate()
}

// ParseConfig decodes YAML on top of DefaultConfig, so omitted keys keep their
// defaults, and validates the result.
//
//	c: 10
//	kernel:
//	  type: rbf
//	  sigma: 0.2
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Mark(errors.Wrap(err, "failed to parse svm config"), errors.ErrInvalidInput)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	return ParseConfig(data)
}

// RandomSource supplies uniform numbers in [0, 1) for partner selection.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a PCG-backed source, reproducible for a given seed.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
