package flow

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/af-corp/shetkari-gateway/internal/types"
)

var pune = &types.LatLng{Lat: 18.52, Lng: 73.85}

// run applies events in order and fails on the first error.
func run(t *testing.T, s State, events ...Event) State {
	t.Helper()
	for _, e := range events {
		var err error
		s, err = Transition(s, e)
		if err != nil {
			t.Fatalf("Transition(%s, %T): %v", s.Step, e, err)
		}
	}
	return s
}

func atSeason(t *testing.T) State {
	return run(t, Initial(),
		SplashFinished{},
		LoggedIn{},
		LocationChosen{Language: types.LangEnglish, Location: "Pune", LatLng: pune},
		SoilChosen{SoilColor: types.SoilBlack},
	)
}

func TestInitial(t *testing.T) {
	s := Initial()
	if s.Step != StepSplash || s.Language != types.LangMarathi {
		t.Errorf("Initial() = %+v", s)
	}
}

func TestHappyPath(t *testing.T) {
	suggestions := &types.CropSuggestionResult{WeatherForecast: "rain"}
	details := &types.CropDetailResult{Markdown: "# Soybean", MapLinks: []types.MapLink{}}

	s := atSeason(t)
	s = run(t, s, SeasonChosen{Season: types.SeasonKharif})
	if s.Step != StepLoadingSuggestions || s.Pending != 1 {
		t.Fatalf("after season: %s pending %d", s.Step, s.Pending)
	}

	want := types.RequestContext{Language: types.LangEnglish, Location: "Pune", SoilColor: types.SoilBlack, Season: types.SeasonKharif}
	if diff := cmp.Diff(want, s.SuggestionsRequest()); diff != "" {
		t.Errorf("suggestions request (-want +got):\n%s", diff)
	}

	s = run(t, s,
		SuggestionsLoaded{Seq: 1, Result: suggestions},
		CropSelected{Crop: "Soybean"},
	)
	if s.Step != StepLoadingDetails || s.Pending != 2 {
		t.Fatalf("after crop selected: %s pending %d", s.Step, s.Pending)
	}
	if got := s.DetailsRequest(); got.Query != "Soybean" || got.LatLng != pune {
		t.Errorf("details request = %+v", got)
	}

	s = run(t, s, DetailsLoaded{Seq: 2, Result: details})
	if s.Step != StepDetails || s.Details != details || s.Suggestions != suggestions {
		t.Errorf("final state = %+v", s)
	}
}

func TestLoginRegisterToggle(t *testing.T) {
	s := run(t, Initial(), SplashFinished{}, ShowRegister{}, ShowLogin{}, ShowRegister{})
	if s.Step != StepRegister {
		t.Fatalf("step = %s", s.Step)
	}

	kept := s
	kept.Location = "Latur"
	kept = run(t, kept, Registered{})
	if kept.Step != StepLocation || kept.Location != "Latur" {
		t.Errorf("empty registration location should keep prior value, got %q", kept.Location)
	}

	s = run(t, s, Registered{Location: "Nashik", LatLng: pune})
	if s.Location != "Nashik" || s.LatLng != pune {
		t.Errorf("registration location not applied: %+v", s)
	}
}

func TestFailuresReturnWithLocalizedError(t *testing.T) {
	tests := []struct {
		lang types.Language
		want string
	}{
		{types.LangMarathi, "माहिती मिळवण्यात त्रुटी आली. कृपया पुन्हा प्रयत्न करा."},
		{types.LangHindi, "जानकारी प्राप्त करने में त्रुटि। कृपया पुनः प्रयास करें।"},
		{types.LangEnglish, "Error fetching information. Please try again."},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			s := atSeason(t)
			s = run(t, s, LanguageChanged{Language: tt.lang}, SeasonChosen{Season: types.SeasonRabi})
			s = run(t, s, SuggestionsFailed{Seq: s.Pending, Err: errors.New("boom")})
			if s.Step != StepSeason || s.Error != tt.want {
				t.Fatalf("after suggestions failure: step %s error %q", s.Step, s.Error)
			}

			// Retrying clears the banner.
			s = run(t, s, SeasonChosen{Season: types.SeasonRabi})
			if s.Error != "" {
				t.Errorf("error not cleared on retry: %q", s.Error)
			}
			s = run(t, s,
				SuggestionsLoaded{Seq: s.Pending, Result: &types.CropSuggestionResult{}},
				CropSelected{Crop: "Gram"},
			)
			s = run(t, s, DetailsFailed{Seq: s.Pending, Err: errors.New("boom")})
			if s.Step != StepSuggestions || s.Error != tt.want {
				t.Errorf("after details failure: step %s error %q", s.Step, s.Error)
			}
		})
	}
}

func TestBack(t *testing.T) {
	tests := []struct {
		from Step
		want Step
	}{
		{StepSoil, StepLocation},
		{StepSeason, StepSoil},
		{StepSuggestions, StepSeason},
		{StepDetails, StepSuggestions},
	}
	for _, tt := range tests {
		s, err := Transition(State{Step: tt.from}, Back{})
		if err != nil {
			t.Errorf("Back from %s: %v", tt.from, err)
			continue
		}
		if s.Step != tt.want {
			t.Errorf("Back from %s = %s, want %s", tt.from, s.Step, tt.want)
		}
	}

	for _, from := range []Step{StepSplash, StepLogin, StepLocation, StepLoadingSuggestions, StepLoadingDetails} {
		if _, err := Transition(State{Step: from}, Back{}); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Back from %s: err = %v, want ErrInvalidTransition", from, err)
		}
	}
}

func TestRestartClearsResults(t *testing.T) {
	s := State{
		Step:        StepDetails,
		Language:    types.LangHindi,
		Location:    "Pune",
		Suggestions: &types.CropSuggestionResult{},
		Details:     &types.CropDetailResult{},
		Error:       "x",
	}
	s = run(t, s, Restart{})
	if s.Step != StepLocation || s.Suggestions != nil || s.Details != nil || s.Error != "" {
		t.Errorf("after restart: %+v", s)
	}
	if s.Location != "Pune" || s.Language != types.LangHindi {
		t.Error("restart must keep location and language")
	}

	for _, from := range []Step{StepSplash, StepLogin, StepRegister, StepLocation} {
		if _, err := Transition(State{Step: from}, Restart{}); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Restart from %s: err = %v", from, err)
		}
	}
}

func TestLogoutClearsSession(t *testing.T) {
	s := State{
		Step:        StepSuggestions,
		Location:    "Pune",
		LatLng:      pune,
		Suggestions: &types.CropSuggestionResult{},
		Details:     &types.CropDetailResult{},
		Error:       "x",
	}
	s = run(t, s, Logout{})
	if s.Step != StepLogin || s.Location != "" || s.LatLng != nil || s.Suggestions != nil || s.Details != nil || s.Error != "" {
		t.Errorf("after logout: %+v", s)
	}

	if _, err := Transition(Initial(), Logout{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Logout from splash: err = %v", err)
	}
}

func TestStaleResponsesAreDiscarded(t *testing.T) {
	s := atSeason(t)
	s = run(t, s, SeasonChosen{Season: types.SeasonKharif})
	firstSeq := s.Pending

	// The farmer logs out while the request is in flight.
	s = run(t, s, Logout{})
	before := s
	got, err := Transition(s, SuggestionsLoaded{Seq: firstSeq, Result: &types.CropSuggestionResult{}})
	if !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("err = %v, want ErrStaleResponse", err)
	}
	if diff := cmp.Diff(before, got); diff != "" {
		t.Errorf("stale response changed state (-before +after):\n%s", diff)
	}

	// A new load is pending; the old sequence number is still stale.
	s = run(t, s, LoggedIn{}, LocationChosen{Language: types.LangEnglish, Location: "Pune"}, SoilChosen{SoilColor: types.SoilRed}, SeasonChosen{Season: types.SeasonZaid})
	if _, err := Transition(s, SuggestionsFailed{Seq: firstSeq}); !errors.Is(err, ErrStaleResponse) {
		t.Errorf("err = %v, want ErrStaleResponse for superseded load", err)
	}
	if _, err := Transition(s, DetailsLoaded{Seq: s.Pending}); !errors.Is(err, ErrStaleResponse) {
		t.Errorf("details result during suggestions load: err = %v", err)
	}
}

func TestLanguageChanged(t *testing.T) {
	s := run(t, atSeason(t), LanguageChanged{Language: types.LangMarathi})
	if s.Language != types.LangMarathi || s.Step != StepSeason {
		t.Errorf("after language change: %+v", s)
	}
	for _, from := range []Step{StepSplash, StepLogin, StepRegister} {
		if _, err := Transition(State{Step: from}, LanguageChanged{Language: types.LangHindi}); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("LanguageChanged in %s: err = %v", from, err)
		}
	}
}

func TestOutOfOrderEventsRejected(t *testing.T) {
	tests := []struct {
		step  Step
		event Event
	}{
		{StepSplash, LoggedIn{}},
		{StepLogin, SoilChosen{}},
		{StepLocation, SeasonChosen{}},
		{StepSeason, CropSelected{Crop: "x"}},
		{StepSoil, SplashFinished{}},
		{StepLocation, Registered{}},
	}
	for _, tt := range tests {
		before := State{Step: tt.step}
		got, err := Transition(before, tt.event)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%T in %s: err = %v, want ErrInvalidTransition", tt.event, tt.step, err)
		}
		if got.Step != tt.step {
			t.Errorf("%T in %s moved to %s", tt.event, tt.step, got.Step)
		}
	}
}

func TestStepString(t *testing.T) {
	if StepLoadingDetails.String() != "LOADING_DETAILS" || Step(99).String() != "UNKNOWN" {
		t.Error("unexpected step names")
	}
	if !StepLoadingSuggestions.Loading() || StepSeason.Loading() {
		t.Error("unexpected Loading()")
	}
}
