package flow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/af-corp/shetkari-gateway/internal/types"
)

// Service is the AI client the loading steps call. *gemini.Client satisfies it.
type Service interface {
	CropSuggestions(ctx context.Context, rc types.RequestContext) (*types.CropSuggestionResult, error)
	CropDetails(ctx context.Context, rc types.RequestContext) (*types.CropDetailResult, error)
}

// Machine serializes events against one wizard session and performs the
// outbound load whenever a transition enters a loading step. The lock is not
// held during the load, so Logout or Restart may arrive while it is in flight;
// its result is then discarded as stale.
type Machine struct {
	mu     sync.Mutex
	state  State
	svc    Service
	logger *slog.Logger
}

func NewMachine(svc Service, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{state: Initial(), svc: svc, logger: logger}
}

// State returns the current snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Dispatch applies e and, if that enters a loading step, blocks until the
// load finishes and its result has been applied. The returned state is the
// latest snapshot. A load failure is not an error here: it is reflected in
// State.Error and the step the machine falls back to.
func (m *Machine) Dispatch(ctx context.Context, e Event) (State, error) {
	s, err := m.apply(e)
	if err != nil {
		return s, err
	}

	var result Event
	switch s.Step {
	case StepLoadingSuggestions:
		res, err := m.svc.CropSuggestions(ctx, s.SuggestionsRequest())
		if err != nil {
			m.logger.Warn("crop suggestions failed", "location", s.Location, "error", err)
			result = SuggestionsFailed{Seq: s.Pending, Err: err}
		} else {
			result = SuggestionsLoaded{Seq: s.Pending, Result: res}
		}
	case StepLoadingDetails:
		res, err := m.svc.CropDetails(ctx, s.DetailsRequest())
		if err != nil {
			m.logger.Warn("crop details failed", "crop", s.SelectedCrop, "error", err)
			result = DetailsFailed{Seq: s.Pending, Err: err}
		} else {
			result = DetailsLoaded{Seq: s.Pending, Result: res}
		}
	default:
		return s, nil
	}

	s, err = m.apply(result)
	if errors.Is(err, ErrStaleResponse) {
		m.logger.Debug("discarding stale response", "error", err)
		return s, nil
	}
	return s, err
}

func (m *Machine) apply(e Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := Transition(m.state, e)
	if err != nil {
		return m.state, err
	}
	m.state = next
	return next, nil
}
