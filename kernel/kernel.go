// Package kernel provides the similarity functions used by the SVM trainer
// and decision function, and helpers that evaluate them over whole datasets.
//
// A kernel is a stateless capability selected by a Type tag plus the options of
// its family:
//
//	linear      k(x, y) = x·y
//	rbf         k(x, y) = exp(-||x-y||² / (2σ²))          (alias: gaussian)
//	polynomial  k(x, y) = (scale·x·y + constant)^degree    (alias: poly)
//	sigmoid     k(x, y) = tanh(alpha·x·y + constant)
//	laplacian   k(x, y) = exp(-||x-y|| / σ)
package kernel

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

// Type identifies a kernel family.
type Type string

const (
	Linear     Type = "linear"
	RBF        Type = "rbf"
	Polynomial Type = "polynomial"
	Sigmoid    Type = "sigmoid"
	Laplacian  Type = "laplacian"
)

// Family defaults.
const (
	DefaultSigma              = 1.0
	DefaultDegree             = 1
	DefaultScale              = 1.0
	DefaultAlpha              = 0.01
	DefaultPolynomialConstant = 1.0
)

// DefaultSigmoidConstant is the sigmoid offset used when Config.Constant is nil.
var DefaultSigmoidConstant = -math.E

// ParseType normalizes a kernel name, accepting the gaussian and poly aliases.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return Linear, nil
	case "rbf", "gaussian":
		return RBF, nil
	case "polynomial", "poly":
		return Polynomial, nil
	case "sigmoid":
		return Sigmoid, nil
	case "laplacian":
		return Laplacian, nil
	default:
		return "", errors.NewValidationError("kernel.type", "unknown kernel", s)
	}
}

// Config selects a kernel and carries the options of every family. Options
// that do not belong to the selected family are ignored.
type Config struct {
	Type   Type    `json:"type" yaml:"type"`
	Sigma  float64 `json:"sigma,omitempty" yaml:"sigma,omitempty"`
	Degree int     `json:"degree,omitempty" yaml:"degree,omitempty"`
	Scale  float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	Alpha  float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	// Constant is the additive term of polynomial and sigmoid kernels.
	// nil selects the family default (1 for polynomial, -e for sigmoid).
	Constant *float64 `json:"constant,omitempty" yaml:"constant,omitempty"`
}

// DefaultConfig returns a linear kernel config with every family option set to
// its default, so that changing only Type yields a usable configuration.
func DefaultConfig() Config {
	return Config{
		Type:   Linear,
		Sigma:  DefaultSigma,
		Degree: DefaultDegree,
		Scale:  DefaultScale,
		Alpha:  DefaultAlpha,
	}
}

// Validate checks the options used by the selected family.
func (c Config) Validate() error {
	t, err := ParseType(string(c.Type))
	if err != nil {
		return err
	}
	switch t {
	case RBF, Laplacian:
		if !(c.Sigma > 0) || math.IsInf(c.Sigma, 0) {
			return errors.NewValidationError("kernel.sigma", "must be positive and finite", c.Sigma)
		}
	case Polynomial:
		if c.Degree < 0 {
			return errors.NewValidationError("kernel.degree", "must be non-negative", c.Degree)
		}
		if math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) {
			return errors.NewValidationError("kernel.scale", "must be finite", c.Scale)
		}
	case Sigmoid:
		if math.IsNaN(c.Alpha) || math.IsInf(c.Alpha, 0) {
			return errors.NewValidationError("kernel.alpha", "must be finite", c.Alpha)
		}
	}
	if c.Constant != nil && (math.IsNaN(*c.Constant) || math.IsInf(*c.Constant, 0)) {
		return errors.NewValidationError("kernel.constant", "must be finite", *c.Constant)
	}
	return nil
}

func (c Config) constantOr(def float64) float64 {
	if c.Constant == nil {
		return def
	}
	return *c.Constant
}

// String renders the config the way the CLI inspect command prints it.
func (c Config) String() string {
	t, err := ParseType(string(c.Type))
	if err != nil {
		return fmt.Sprintf("kernel(%s)", c.Type)
	}
	switch t {
	case RBF, Laplacian:
		return fmt.Sprintf("%s(sigma=%g)", t, c.Sigma)
	case Polynomial:
		return fmt.Sprintf("%s(degree=%d, scale=%g, constant=%g)", t, c.Degree, c.Scale, c.constantOr(DefaultPolynomialConstant))
	case Sigmoid:
		return fmt.Sprintf("%s(alpha=%g, constant=%g)", t, c.Alpha, c.constantOr(DefaultSigmoidConstant))
	default:
		return string(t)
	}
}

// Kernel computes a symmetric similarity between two feature vectors of equal length.
type Kernel interface {
	Compute(x, y []float64) float64
	// Config returns the configuration that reconstructs this kernel through New.
	Config() Config
}

// New builds the kernel described by cfg.
func New(cfg Config) (Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t, _ := ParseType(string(cfg.Type))
	switch t {
	case RBF:
		return RBFKernel{Sigma: cfg.Sigma}, nil
	case Polynomial:
		return PolynomialKernel{
			Degree:   cfg.Degree,
			Scale:    cfg.Scale,
			Constant: cfg.constantOr(DefaultPolynomialConstant),
		}, nil
	case Sigmoid:
		return SigmoidKernel{
			Alpha:    cfg.Alpha,
			Constant: cfg.constantOr(DefaultSigmoidConstant),
		}, nil
	case Laplacian:
		return LaplacianKernel{Sigma: cfg.Sigma}, nil
	default:
		return LinearKernel{}, nil
	}
}

// LinearKernel is the plain dot product.
type LinearKernel struct{}

func (LinearKernel) Compute(x, y []float64) float64 { return floats.Dot(x, y) }

func (LinearKernel) Config() Config {
	c := DefaultConfig()
	c.Type = Linear
	return c
}

// RBFKernel is the gaussian kernel with bandwidth Sigma.
type RBFKernel struct {
	Sigma float64
}

func (k RBFKernel) Compute(x, y []float64) float64 {
	return math.Exp(-squaredDistance(x, y) / (2 * k.Sigma * k.Sigma))
}

func (k RBFKernel) Config() Config {
	c := DefaultConfig()
	c.Type, c.Sigma = RBF, k.Sigma
	return c
}

// PolynomialKernel computes (Scale·x·y + Constant)^Degree.
type PolynomialKernel struct {
	Degree   int
	Scale    float64
	Constant float64
}

func (k PolynomialKernel) Compute(x, y []float64) float64 {
	return math.Pow(k.Scale*floats.Dot(x, y)+k.Constant, float64(k.Degree))
}

func (k PolynomialKernel) Config() Config {
	c := DefaultConfig()
	constant := k.Constant
	c.Type, c.Degree, c.Scale, c.Constant = Polynomial, k.Degree, k.Scale, &constant
	return c
}

// SigmoidKernel computes tanh(Alpha·x·y + Constant).
type SigmoidKernel struct {
	Alpha    float64
	Constant float64
}

func (k SigmoidKernel) Compute(x, y []float64) float64 {
	return math.Tanh(k.Alpha*floats.Dot(x, y) + k.Constant)
}

func (k SigmoidKernel) Config() Config {
	c := DefaultConfig()
	constant := k.Constant
	c.Type, c.Alpha, c.Constant = Sigmoid, k.Alpha, &constant
	return c
}

// LaplacianKernel computes exp(-||x-y|| / Sigma).
type LaplacianKernel struct {
	Sigma float64
}

func (k LaplacianKernel) Compute(x, y []float64) float64 {
	return math.Exp(-math.Sqrt(squaredDistance(x, y)) / k.Sigma)
}

func (k LaplacianKernel) Config() Config {
	c := DefaultConfig()
	c.Type, c.Sigma = Laplacian, k.Sigma
	return c
}

func squaredDistance(x, y []float64) float64 {
	if len(x) != len(y) {
		panic(fmt.Sprintf("kernel: vector length mismatch %d != %d", len(x), len(y)))
	}
	var s float64
	for i, v := range x {
		d := v - y[i]
		s += d * d
	}
	return s
}
