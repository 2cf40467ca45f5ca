package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// DecisionFunctioner は生のマージン（決定関数の値）を返すモデルのインターフェース
type DecisionFunctioner interface {
	// DecisionFunction は各行の符号付きスコアを返す（正ならクラス+1）
	DecisionFunction(X mat.Matrix) (mat.Matrix, error)
}

// Classifier は二値分類器のインターフェース
type Classifier interface {
	Fitter
	Predictor
	DecisionFunctioner
	Scorer
}
