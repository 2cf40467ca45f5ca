// Package model provides lifecycle state, estimator contracts and snapshot
// persistence shared by gosvm estimators.
package model

import (
	"sync"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

// StateManager tracks the lifecycle of an estimator in a thread-safe manner.
// Estimators hold it by composition and consult it before every operation that
// needs a trained or loaded model.
type StateManager struct {
	mu    sync.RWMutex
	state EstimatorState

	// Dimensions fixed by the last successful Fit or Load.
	nFeatures int
	nSamples  int
}

// NewStateManager creates a StateManager in the Untrained state.
func NewStateManager() *StateManager {
	return &StateManager{state: Untrained}
}

// State returns the current lifecycle state.
func (s *StateManager) State() EstimatorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsFitted reports whether the model may serve predictions (trained or loaded).
func (s *StateManager) IsFitted() bool {
	return s.State().Ready()
}

// MarkTrained records a successful Fit on nSamples rows of nFeatures columns.
func (s *StateManager) MarkTrained(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Trained
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// MarkLoaded records that the model was restored from a snapshot.
func (s *StateManager) MarkLoaded(nFeatures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Loaded
	s.nFeatures = nFeatures
	s.nSamples = 0
}

// Reset returns the manager to the Untrained state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Untrained
	s.nFeatures = 0
	s.nSamples = 0
}

// GetDimensions returns the number of features and samples seen during fitting.
// nSamples is zero for a loaded model.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted returns a NotFittedError (errors.ErrNotReady) unless the model
// is trained or loaded.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// RequireFeatures checks that a prediction input has the dimensionality fixed
// at fit/load time.
func (s *StateManager) RequireFeatures(op string, got int) error {
	nFeatures, _ := s.GetDimensions()
	if got != nFeatures {
		return errors.NewDimensionError(op, nFeatures, got, 1)
	}
	return nil
}

// ModelState is a printable summary of the lifecycle.
type ModelState struct {
	State     string `json:"state" yaml:"state"`
	NFeatures int    `json:"n_features,omitempty" yaml:"n_features,omitempty"`
	NSamples  int    `json:"n_samples,omitempty" yaml:"n_samples,omitempty"`
}

// GetState returns the current state as a ModelState struct.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{
		State:     s.state.String(),
		NFeatures: s.nFeatures,
		NSamples:  s.nSamples,
	}
}
