// Package metrics provides evaluation metrics for binary classifiers.
//
// Labels are accepted as {-1, +1} (the SVM convention) or {0, 1}; a value of
// 1 is the positive class.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// Accuracy は正解率（予測ラベルが一致した割合）を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassificationError は誤分類率（1 - Accuracy）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, errors.Wrap(err, "ClassificationError")
	}
	return 1 - acc, nil
}

// AUC はROC曲線下面積を計算する
//
// スコアが同順位のサンプルは平均順位で扱う（Mann-Whitney U統計量）。
// 正例または負例しか存在しない場合は未定義のため0.5を返す。
func AUC(yTrue, yScore *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yScore)
	if err != nil {
		return 0, err
	}

	idx := make([]int, n)
	var nPos int
	for i := 0; i < n; i++ {
		idx[i] = i
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0, -1:
		default:
			return 0, errors.NewValueError("AUC", "labels must be binary ({0,1} or {-1,+1})")
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		return 0.5, nil
	}

	sort.Slice(idx, func(a, b int) bool { return yScore.AtVec(idx[a]) < yScore.AtVec(idx[b]) })

	// 同順位グループに平均順位を割り当てて正例の順位和を求める
	var rankSum float64
	for start := 0; start < n; {
		end := start + 1
		for end < n && yScore.AtVec(idx[end]) == yScore.AtVec(idx[start]) {
			end++
		}
		avgRank := float64(start+end+1) / 2
		for k := start; k < end; k++ {
			if yTrue.AtVec(idx[k]) == 1 {
				rankSum += avgRank
			}
		}
		start = end
	}

	u := rankSum - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}

// ConfusionCounts は二値分類の混同行列の各セル
type ConfusionCounts struct {
	TP, FP, TN, FN int
}

// Confusion は混同行列を数える。予測・正解とも1を正例とみなす
func Confusion(yTrue, yPred *mat.VecDense) (ConfusionCounts, error) {
	n, err := checkPair("Confusion", yTrue, yPred)
	if err != nil {
		return ConfusionCounts{}, err
	}
	var c ConfusionCounts
	for i := 0; i < n; i++ {
		actual, predicted := yTrue.AtVec(i) == 1, yPred.AtVec(i) == 1
		switch {
		case actual && predicted:
			c.TP++
		case !actual && predicted:
			c.FP++
		case actual && !predicted:
			c.FN++
		default:
			c.TN++
		}
	}
	return c, nil
}

// AccuracyMatrix は列ベクトル（n×1行列）形式の入力に対してAccuracyを計算する
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnPair("AccuracyMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return Accuracy(t, p)
}

// AUCMatrix は行列形式の入力に対してAUCを計算する（先頭列を使用）
func AUCMatrix(yTrue, yScore mat.Matrix) (float64, error) {
	t, s, err := columnPair("AUCMatrix", yTrue, yScore)
	if err != nil {
		return 0, err
	}
	return AUC(t, s)
}

func columnPair(op string, a, b mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	if a == nil || b == nil {
		return nil, nil, errors.NewValueError(op, "nil matrix")
	}
	if isEmpty(a) || isEmpty(b) {
		return nil, nil, errors.NewValueError(op, "empty matrix")
	}
	ra, _ := a.Dims()
	rb, _ := b.Dims()
	if ra != rb {
		return nil, nil, errors.NewDimensionError(op, ra, rb, 0)
	}
	return firstColumn(a), firstColumn(b), nil
}

func isEmpty(m mat.Matrix) bool {
	if d, ok := m.(*mat.Dense); ok && d.IsEmpty() {
		return true
	}
	r, c := m.Dims()
	return r == 0 || c == 0
}

func firstColumn(m mat.Matrix) *mat.VecDense {
	r, _ := m.Dims()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
