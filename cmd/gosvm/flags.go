package main

import (
	"github.com/spf13/pflag"

	"github.com/YuminosukeSato/gosvm/internal/dataset"
	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"github.com/YuminosukeSato/gosvm/pkg/store"
	"github.com/YuminosukeSato/gosvm/sklearn/svm"
)

// dataFlags locate and describe a CSV table.
type dataFlags struct {
	path      string
	header    bool
	mapBinary bool
}

func (f *dataFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.path, "data", "", "CSV file; the last column is the label")
	fs.BoolVar(&f.header, "header", false, "Skip the first CSV record")
	fs.BoolVar(&f.mapBinary, "map-binary", false, "Read labels 0/1 as -1/+1")
}

func (f *dataFlags) load(unlabelled bool) (*dataset.Dataset, error) {
	if f.path == "" {
		return nil, errors.NewValidationError("data", "is required", f.path)
	}
	return dataset.ReadFile(f.path, dataset.Options{
		Header:     f.header,
		MapBinary:  f.mapBinary,
		Unlabelled: unlabelled,
	})
}

// hyperFlags override fields of an svm.Config, optionally read from YAML first.
type hyperFlags struct {
	configPath string

	c             float64
	tol           float64
	maxPasses     int
	maxIterations int
	alphaTol      float64
	kernelType    string
	sigma         float64
	degree        int
	scale         float64
	alpha         float64
	constant      float64
	noWhitening   bool
	seed          uint64
}

func (f *hyperFlags) register(fs *pflag.FlagSet) {
	def := svm.DefaultConfig()
	fs.StringVar(&f.configPath, "config", "", "YAML hyperparameter file; flags given explicitly override it")
	fs.Float64Var(&f.c, "c", def.C, "Box constraint C")
	fs.Float64Var(&f.tol, "tol", def.Tol, "KKT violation tolerance")
	fs.IntVar(&f.maxPasses, "max-passes", def.MaxPasses, "Idle sweeps that end training")
	fs.IntVar(&f.maxIterations, "max-iterations", def.MaxIterations, "Sweep cap")
	fs.Float64Var(&f.alphaTol, "alpha-tol", def.AlphaTol, "Support vector retention threshold")
	fs.StringVar(&f.kernelType, "kernel", string(def.Kernel.Type), "Kernel (linear|rbf|polynomial|sigmoid|laplacian)")
	fs.Float64Var(&f.sigma, "sigma", def.Kernel.Sigma, "Width of rbf and laplacian kernels")
	fs.IntVar(&f.degree, "degree", def.Kernel.Degree, "Polynomial degree")
	fs.Float64Var(&f.scale, "scale", def.Kernel.Scale, "Polynomial scale")
	fs.Float64Var(&f.alpha, "alpha", def.Kernel.Alpha, "Sigmoid slope")
	fs.Float64Var(&f.constant, "constant", 0, "Additive term of polynomial and sigmoid kernels (kernel default when unset)")
	fs.BoolVar(&f.noWhitening, "no-whitening", false, "Disable min/max feature scaling")
	fs.Uint64Var(&f.seed, "seed", 0, "Partner selection seed (0 picks one at random)")
}

// config merges DefaultConfig, the YAML file and the flags that were set.
func (f *hyperFlags) config(fs *pflag.FlagSet) (svm.Config, error) {
	cfg := svm.DefaultConfig()
	if f.configPath != "" {
		loaded, err := svm.LoadConfig(f.configPath)
		if err != nil {
			return svm.Config{}, err
		}
		cfg = loaded
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("c", func() { cfg.C = f.c })
	set("tol", func() { cfg.Tol = f.tol })
	set("max-passes", func() { cfg.MaxPasses = f.maxPasses })
	set("max-iterations", func() { cfg.MaxIterations = f.maxIterations })
	set("alpha-tol", func() { cfg.AlphaTol = f.alphaTol })
	set("kernel", func() { cfg.Kernel.Type = kernel.Type(f.kernelType) })
	set("sigma", func() { cfg.Kernel.Sigma = f.sigma })
	set("degree", func() { cfg.Kernel.Degree = f.degree })
	set("scale", func() { cfg.Kernel.Scale = f.scale })
	set("alpha", func() { cfg.Kernel.Alpha = f.alpha })
	set("constant", func() { c := f.constant; cfg.Kernel.Constant = &c })
	set("no-whitening", func() { cfg.Whitening = !f.noWhitening })
	set("seed", func() { cfg.Seed = f.seed })

	if err := cfg.Validate(); err != nil {
		return svm.Config{}, err
	}
	return cfg, nil
}

// modelFlags select a model either from a snapshot file or from a store.
type modelFlags struct {
	path     string
	storeDir string
	id       string
}

func (f *modelFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.path, "model", "", "Snapshot file (.json or .gob)")
	fs.StringVar(&f.storeDir, "store", "", "Model store directory")
	fs.StringVar(&f.id, "id", "", "Model ID inside --store")
}

func (f *modelFlags) load() (*svm.SVC, error) {
	switch {
	case f.path != "" && f.storeDir != "":
		return nil, errors.NewValueError("gosvm", "--model and --store are mutually exclusive")
	case f.path != "":
		return svm.LoadFile(f.path)
	case f.storeDir != "":
		if f.id == "" {
			return nil, errors.NewValidationError("id", "is required with --store", f.id)
		}
		s, err := store.Open(store.Options{BasePath: f.storeDir})
		if err != nil {
			return nil, err
		}
		return s.Model(f.id)
	default:
		return nil, errors.NewValueError("gosvm", "one of --model or --store is required")
	}
}
