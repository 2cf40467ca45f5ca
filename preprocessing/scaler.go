// Package preprocessing provides the feature whitening applied before SVM training and prediction.
package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/core/model"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"github.com/YuminosukeSato/gosvm/pkg/log"
)

// MinMaxScaler は特徴量ごとに最小値・最大値で[0,1]へ写像するホワイトニング前処理
//
// 変換式は x'_j = (x_j - min_j) / (max_j - min_j)。
// 統計量はFit後に不変で、同じ統計量が学習行と全ての予測ベクトルに適用される。
type MinMaxScaler struct {
	state *model.StateManager

	dataMin []float64
	dataMax []float64
}

var _ model.InverseTransformer = (*MinMaxScaler)(nil)

// NewMinMaxScaler は未学習のMinMaxScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewMinMaxScaler()
//	XScaled, err := scaler.FitTransform(X)
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{state: model.NewStateManager()}
}

// NewMinMaxScalerFromStats は保存済みの統計量からスケーラーを復元する
//
// min/maxの長さが異なる場合、または max_j <= min_j の列がある場合はエラーを返す。
func NewMinMaxScalerFromStats(dataMin, dataMax []float64) (*MinMaxScaler, error) {
	if len(dataMin) == 0 || len(dataMin) != len(dataMax) {
		return nil, errors.NewDimensionError("MinMaxScaler.Load", len(dataMin), len(dataMax), 1)
	}
	for j := range dataMin {
		if !(dataMax[j] > dataMin[j]) {
			return nil, errors.NewNumericalInstabilityError("whitening", []float64{dataMin[j], dataMax[j]}, j)
		}
	}
	m := NewMinMaxScaler()
	m.dataMin = append([]float64(nil), dataMin...)
	m.dataMax = append([]float64(nil), dataMax...)
	m.state.MarkLoaded(len(dataMin))
	return m, nil
}

// Fit は訓練データから列ごとの最小値・最大値を計算する
//
// 値域がゼロの列（max_j == min_j）があると変換が定義できないため
// errors.ErrNumericDegeneracy としてエラーを返す。失敗時は既存の統計量を変更しない。
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	dataMin := make([]float64, c)
	dataMax := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		if err := errors.CheckNumericalStability("whitening", col, j); err != nil {
			return errors.Mark(err, errors.ErrInvalidInput)
		}
		dataMin[j] = floats.Min(col)
		dataMax[j] = floats.Max(col)
		if dataMax[j] == dataMin[j] {
			return errors.NewNumericalInstabilityError("whitening", []float64{dataMin[j], dataMax[j]}, j)
		}
	}

	m.dataMin = dataMin
	m.dataMax = dataMax
	m.state.MarkTrained(c, r)

	log.GetLoggerWithName("preprocessing").Debug("Whitening statistics computed",
		log.ModelNameKey, "MinMaxScaler",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return nil
}

// Transform は学習済みの統計量でデータを[0,1]にスケーリングする
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("MinMaxScaler", "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := m.state.RequireFeatures("MinMaxScaler.Transform", c); err != nil {
		return nil, err
	}

	result := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		m.transformInto(row, row)
		result.SetRow(i, row)
	}
	return result, nil
}

// TransformRow は1ベクトルを変換してdstに書き込む。dstがnilなら新しいスライスを確保する
func (m *MinMaxScaler) TransformRow(dst, x []float64) ([]float64, error) {
	if err := m.state.RequireFitted("MinMaxScaler", "TransformRow"); err != nil {
		return nil, err
	}
	if err := m.state.RequireFeatures("MinMaxScaler.TransformRow", len(x)); err != nil {
		return nil, err
	}
	if dst == nil {
		dst = make([]float64, len(x))
	}
	m.transformInto(dst, x)
	return dst, nil
}

func (m *MinMaxScaler) transformInto(dst, x []float64) {
	for j, v := range x {
		dst[j] = (v - m.dataMin[j]) / (m.dataMax[j] - m.dataMin[j])
	}
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform はスケーリングされたデータを元の範囲に戻す
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("MinMaxScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := m.state.RequireFeatures("MinMaxScaler.InverseTransform", c); err != nil {
		return nil, err
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*(m.dataMax[j]-m.dataMin[j])+m.dataMin[j])
		}
	}
	return result, nil
}

// IsFitted は統計量が利用可能かどうかを返す
func (m *MinMaxScaler) IsFitted() bool {
	return m.state.IsFitted()
}

// DataMin は列ごとの最小値のコピーを返す
func (m *MinMaxScaler) DataMin() []float64 {
	return append([]float64(nil), m.dataMin...)
}

// DataMax は列ごとの最大値のコピーを返す
func (m *MinMaxScaler) DataMax() []float64 {
	return append([]float64(nil), m.dataMax...)
}

// GetParams はスケーラーのパラメータを取得する
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"feature_range": [2]float64{0, 1},
	}
}

// String はスケーラーの文字列表現を返す
func (m *MinMaxScaler) String() string {
	if !m.IsFitted() {
		return "MinMaxScaler(feature_range=[0.0, 1.0])"
	}
	nFeatures, _ := m.state.GetDimensions()
	return fmt.Sprintf("MinMaxScaler(feature_range=[0.0, 1.0], n_features=%d)", nFeatures)
}
