package model

// EstimatorState はモデルのライフサイクル状態を表す
//
// 状態は Untrained → Trained（Fit成功）または Untrained → Loaded（スナップショットから復元）
// のいずれかに遷移する。予測・エクスポートは Trained と Loaded でのみ許可される。
type EstimatorState int

const (
	// Untrained はモデルが未学習の状態
	Untrained EstimatorState = iota
	// Trained はFitによって学習済みの状態
	Trained
	// Loaded はスナップショットから復元された状態（再学習なし）
	Loaded
)

// String は状態名を返す
func (s EstimatorState) String() string {
	switch s {
	case Untrained:
		return "untrained"
	case Trained:
		return "trained"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Ready は予測可能な状態かどうかを返す
func (s EstimatorState) Ready() bool {
	return s == Trained || s == Loaded
}
