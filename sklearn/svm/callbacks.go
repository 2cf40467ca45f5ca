package svm

import (
	"time"

	"github.com/YuminosukeSato/gosvm/pkg/log"
)

// CallbackEnv describes the optimizer state after one SMO sweep.
type CallbackEnv struct {
	Model *SVC
	// Iteration is the 1-based sweep number.
	Iteration int
	// Updates is the number of alpha pairs changed during the sweep.
	Updates int
	// Passes counts consecutive sweeps without updates.
	Passes int
	// Bias is the current bias term.
	Bias float64
	// NonZero is the number of alphas currently above AlphaTol.
	NonZero   int
	BeginTime time.Time
	EndTime   time.Time
}

// Callback is called after every sweep. Returning an error aborts Fit with
// that error and leaves the model unchanged.
type Callback func(env *CallbackEnv) error

// LogProgress logs optimizer progress every period sweeps at debug level.
func LogProgress(logger log.Logger, period int) Callback {
	if period < 1 {
		period = 1
	}
	return func(env *CallbackEnv) error {
		if env.Iteration%period == 0 {
			logger.Debug("SMO sweep",
				log.IterationKey, env.Iteration,
				log.UpdatesKey, env.Updates,
				log.PassesKey, env.Passes,
				log.BiasKey, env.Bias,
				log.SupportVectorsKey, env.NonZero,
				log.DurationMsKey, env.EndTime.Sub(env.BeginTime).Milliseconds(),
			)
		}
		return nil
	}
}

// History is the per-sweep trace collected by RecordHistory.
type History struct {
	Updates []int
	Passes  []int
	Bias    []float64
	NonZero []int
}

// RecordHistory appends every sweep to h.
func RecordHistory(h *History) Callback {
	return func(env *CallbackEnv) error {
		h.Updates = append(h.Updates, env.Updates)
		h.Passes = append(h.Passes, env.Passes)
		h.Bias = append(h.Bias, env.Bias)
		h.NonZero = append(h.NonZero, env.NonZero)
		return nil
	}
}
