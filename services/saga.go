package services

import "go.uber.org/zap"

// saga records how to undo each committed step of a multi-table lifecycle
// operation. The backing store offers no cross-table transaction spanning the
// whole operation, so on failure the recorded undo actions run in reverse
// order instead of leaving silent partial state.
type saga struct {
	log   *zap.Logger
	steps []sagaStep
}

type sagaStep struct {
	name string
	undo func() error
}

func newSaga(log *zap.Logger) *saga {
	return &saga{log: log}
}

// record registers the undo action for a step that just committed
func (s *saga) record(name string, undo func() error) {
	s.steps = append(s.steps, sagaStep{name: name, undo: undo})
}

// compensate runs recorded undo actions in reverse. A failing undo is logged
// and the remaining ones still run; compensation is best-effort by nature.
func (s *saga) compensate() {
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.undo(); err != nil {
			s.log.Error("compensation step failed",
				zap.String("step", step.name),
				zap.Error(err))
		}
	}
}
