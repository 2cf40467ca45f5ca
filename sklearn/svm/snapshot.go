package svm

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/gosvm/core/model"
	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"github.com/YuminosukeSato/gosvm/pkg/log"
	"github.com/YuminosukeSato/gosvm/preprocessing"
)

// SnapshotVersion is the current snapshot layout version.
const SnapshotVersion = 1

// MinMax is the whitening range of one feature.
type MinMax struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Snapshot is the exported state of a trained or loaded SVC. It holds either
// W (linear kernel) or the support vector arrays X, Y and Alphas (any other
// kernel), never both. X holds whitened vectors when whitening is enabled.
type Snapshot struct {
	Version   int      `json:"version"`
	ModelID   string   `json:"model_id"`
	Config    Config   `json:"config"`
	Bias      float64  `json:"b"`
	NFeatures int      `json:"n_features"`
	MinMax    []MinMax `json:"min_max,omitempty"`

	W []float64 `json:"w,omitempty"`

	X              [][]float64 `json:"x,omitempty"`
	Y              []float64   `json:"y,omitempty"`
	Alphas         []float64   `json:"alphas,omitempty"`
	SupportIndices []int       `json:"support_indices,omitempty"`
}

// Linear reports whether the snapshot holds the linear variant.
func (s *Snapshot) Linear() bool {
	t, err := kernel.ParseType(string(s.Config.Kernel.Type))
	return err == nil && t == kernel.Linear
}

// Validate checks that the snapshot can reconstruct a decision function.
func (s *Snapshot) Validate() error {
	invalid := func(msg string, args ...interface{}) error {
		return errors.NewValueError("Snapshot.Validate", fmt.Sprintf(msg, args...))
	}

	if s.Version != SnapshotVersion {
		return invalid("unsupported snapshot version %d", s.Version)
	}
	if err := s.Config.Validate(); err != nil {
		return err
	}
	if s.NFeatures < 1 {
		return invalid("n_features must be positive, got %d", s.NFeatures)
	}
	if math.IsNaN(s.Bias) || math.IsInf(s.Bias, 0) {
		return invalid("bias is not finite")
	}

	if s.Config.Whitening {
		if len(s.MinMax) != s.NFeatures {
			return errors.NewDimensionError("Snapshot.Validate", s.NFeatures, len(s.MinMax), 1)
		}
	} else if len(s.MinMax) != 0 {
		return invalid("whitening stats present but whitening is disabled")
	}

	if s.Linear() {
		if len(s.X) != 0 || len(s.Y) != 0 || len(s.Alphas) != 0 {
			return invalid("linear snapshot must not carry support vectors")
		}
		if len(s.W) != s.NFeatures {
			return errors.NewDimensionError("Snapshot.Validate", s.NFeatures, len(s.W), 1)
		}
		return nil
	}

	if len(s.W) != 0 {
		return invalid("kernel snapshot must not carry a weight vector")
	}
	if len(s.Y) != len(s.X) || len(s.Alphas) != len(s.X) {
		return invalid("support arrays differ in length: x=%d y=%d alphas=%d", len(s.X), len(s.Y), len(s.Alphas))
	}
	if len(s.SupportIndices) != 0 && len(s.SupportIndices) != len(s.X) {
		return invalid("support_indices length %d does not match %d support vectors", len(s.SupportIndices), len(s.X))
	}
	for i, row := range s.X {
		if len(row) != s.NFeatures {
			return errors.NewDimensionError("Snapshot.Validate", s.NFeatures, len(row), 1)
		}
		if !(s.Alphas[i] > 0) {
			return invalid("alpha %d is not positive", i)
		}
	}
	return nil
}

// Export captures a trained or loaded model.
func (s *SVC) Export() (Snapshot, error) {
	if err := s.state.RequireFitted(modelName, "Export"); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:   SnapshotVersion,
		ModelID:   s.id,
		Config:    s.cfg,
		Bias:      s.bias,
		NFeatures: s.NFeatures(),
	}
	// シードはスナップショットの再現に不要
	snap.Config.Seed = 0

	if s.scaler != nil {
		mins, maxs := s.scaler.DataMin(), s.scaler.DataMax()
		snap.MinMax = make([]MinMax, len(mins))
		for j := range mins {
			snap.MinMax[j] = MinMax{Min: mins[j], Max: maxs[j]}
		}
	}

	switch d := s.decision.(type) {
	case *LinearModel:
		snap.W = append([]float64(nil), d.W...)
	case *KernelModel:
		snap.X = make([][]float64, len(d.X))
		for i, row := range d.X {
			snap.X[i] = append([]float64(nil), row...)
		}
		snap.Y = append([]float64(nil), d.Y...)
		snap.Alphas = append([]float64(nil), d.Alphas...)
		if s.support != nil {
			snap.SupportIndices = append([]int(nil), s.support.indices...)
		}
	}

	s.logger().Debug("Model exported",
		log.OperationKey, log.OperationExport,
		log.KernelKey, string(s.cfg.Kernel.Type),
	)
	return snap, nil
}

// Load reconstructs a model in the loaded state from a snapshot, without
// retraining. The snapshot is copied; later changes to it do not affect the model.
func Load(snap Snapshot, opts ...Option) (*SVC, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	cfg := snap.Config
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, WithConfig(cfg))
	s, err := NewSVC(all...)
	if err != nil {
		return nil, err
	}
	if snap.ModelID != "" {
		if _, err := uuid.Parse(snap.ModelID); err == nil {
			s.id = snap.ModelID
		}
	}

	if cfg.Whitening {
		mins := make([]float64, len(snap.MinMax))
		maxs := make([]float64, len(snap.MinMax))
		for j, mm := range snap.MinMax {
			mins[j], maxs[j] = mm.Min, mm.Max
		}
		scaler, err := preprocessing.NewMinMaxScalerFromStats(mins, maxs)
		if err != nil {
			return nil, err
		}
		s.scaler = scaler
	}

	if snap.Linear() {
		s.decision = &LinearModel{W: append([]float64(nil), snap.W...)}
	} else {
		km := &KernelModel{
			X:      make([][]float64, len(snap.X)),
			Y:      append([]float64(nil), snap.Y...),
			Alphas: append([]float64(nil), snap.Alphas...),
		}
		for i, row := range snap.X {
			km.X[i] = append([]float64(nil), row...)
		}
		s.decision = km

		// 学習時の行番号はスナップショットに含まれる場合のみ復元できる。
		// サポートベクトルが0個なら空集合として扱う
		if len(snap.SupportIndices) == len(snap.X) {
			s.support = &supportSet{
				indices: append([]int{}, snap.SupportIndices...),
				rows:    km.X,
				labels:  km.Y,
				alphas:  km.Alphas,
			}
		}
	}
	s.bias = snap.Bias
	s.state.MarkLoaded(snap.NFeatures)

	s.logger().Info("Model loaded",
		log.OperationKey, log.OperationLoad,
		log.KernelKey, string(s.cfg.Kernel.Type),
		log.FeaturesKey, snap.NFeatures,
	)
	return s, nil
}

// WriteSnapshot encodes the snapshot as JSON or gob.
func WriteSnapshot(w io.Writer, snap Snapshot, format model.Format) error {
	return model.SaveModelToWriter(snap, w, format)
}

// ReadSnapshot decodes and validates a snapshot.
func ReadSnapshot(r io.Reader, format model.Format) (Snapshot, error) {
	var snap Snapshot
	if err := model.LoadModelFromReader(&snap, r, format); err != nil {
		return Snapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// SaveFile exports the model to path; the format follows the file extension
// (.json, otherwise gob).
func (s *SVC) SaveFile(path string) error {
	snap, err := s.Export()
	if err != nil {
		return err
	}
	return model.SaveModel(snap, path, formatForPath(path))
}

// LoadFile reads a snapshot written by SaveFile and loads it.
func LoadFile(path string, opts ...Option) (*SVC, error) {
	var snap Snapshot
	if err := model.LoadModel(&snap, path, formatForPath(path)); err != nil {
		return nil, err
	}
	return Load(snap, opts...)
}

func formatForPath(path string) model.Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return model.FormatJSON
	}
	return model.FormatGob
}
