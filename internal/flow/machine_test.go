package flow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/goleak"

	"github.com/af-corp/shetkari-gateway/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeService struct {
	suggestions    *types.CropSuggestionResult
	details        *types.CropDetailResult
	err            error
	suggestionReqs []types.RequestContext
	detailReqs     []types.RequestContext

	// onCall runs inside the service call, before it returns.
	onCall func()
}

func (f *fakeService) CropSuggestions(_ context.Context, rc types.RequestContext) (*types.CropSuggestionResult, error) {
	f.suggestionReqs = append(f.suggestionReqs, rc)
	if f.onCall != nil {
		f.onCall()
	}
	return f.suggestions, f.err
}

func (f *fakeService) CropDetails(_ context.Context, rc types.RequestContext) (*types.CropDetailResult, error) {
	f.detailReqs = append(f.detailReqs, rc)
	if f.onCall != nil {
		f.onCall()
	}
	return f.details, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dispatchAll(t *testing.T, m *Machine, events ...Event) State {
	t.Helper()
	var s State
	for _, e := range events {
		var err error
		s, err = m.Dispatch(context.Background(), e)
		if err != nil {
			t.Fatalf("Dispatch(%T): %v", e, err)
		}
	}
	return s
}

func TestMachine_LoadsThroughService(t *testing.T) {
	svc := &fakeService{
		suggestions: &types.CropSuggestionResult{SuggestedCrops: []types.CropSuggestion{{Name: "Soybean"}}},
		details:     &types.CropDetailResult{Markdown: "# Soybean"},
	}
	m := NewMachine(svc, quietLogger())

	s := dispatchAll(t, m,
		SplashFinished{},
		LoggedIn{},
		LocationChosen{Language: types.LangEnglish, Location: "Pune", LatLng: pune},
		SoilChosen{SoilColor: types.SoilBlack},
		SeasonChosen{Season: types.SeasonKharif},
	)
	if s.Step != StepSuggestions || s.Suggestions != svc.suggestions {
		t.Fatalf("after season: %s", s.Step)
	}
	if len(svc.suggestionReqs) != 1 || svc.suggestionReqs[0].Location != "Pune" {
		t.Errorf("suggestion requests = %+v", svc.suggestionReqs)
	}

	s = dispatchAll(t, m, CropSelected{Crop: "Soybean"})
	if s.Step != StepDetails || s.Details != svc.details {
		t.Fatalf("after crop selected: %s", s.Step)
	}
	if got := svc.detailReqs[0]; got.Query != "Soybean" || got.LatLng != pune {
		t.Errorf("detail request = %+v", got)
	}
	if m.State().Step != StepDetails {
		t.Error("State() out of sync with Dispatch result")
	}
}

func TestMachine_FailureFallsBack(t *testing.T) {
	svc := &fakeService{err: errors.New("service unavailable")}
	m := NewMachine(svc, quietLogger())

	s := dispatchAll(t, m,
		SplashFinished{},
		LoggedIn{},
		LocationChosen{Language: types.LangHindi, Location: "Indore"},
		SoilChosen{SoilColor: types.SoilBlack},
		SeasonChosen{Season: types.SeasonRabi},
	)
	if s.Step != StepSeason {
		t.Fatalf("step = %s, want SEASON", s.Step)
	}
	if s.Error != FetchErrorMessage(types.LangHindi) {
		t.Errorf("error = %q", s.Error)
	}
}

func TestMachine_LogoutDuringLoadDiscardsResponse(t *testing.T) {
	svc := &fakeService{suggestions: &types.CropSuggestionResult{}}
	m := NewMachine(svc, quietLogger())
	dispatchAll(t, m,
		SplashFinished{},
		LoggedIn{},
		LocationChosen{Language: types.LangEnglish, Location: "Pune"},
		SoilChosen{SoilColor: types.SoilRed},
	)

	svc.onCall = func() {
		if _, err := m.Dispatch(context.Background(), Logout{}); err != nil {
			t.Errorf("Logout during load: %v", err)
		}
	}

	s, err := m.Dispatch(context.Background(), SeasonChosen{Season: types.SeasonKharif})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if s.Step != StepLogin || s.Suggestions != nil {
		t.Errorf("late response was applied: %+v", s)
	}
}

func TestMachine_InvalidEvent(t *testing.T) {
	m := NewMachine(&fakeService{}, quietLogger())
	s, err := m.Dispatch(context.Background(), Back{})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if s.Step != StepSplash {
		t.Errorf("step = %s, want SPLASH", s.Step)
	}
}
