package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned for an event the current step does not accept.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrStaleResponse is returned for a load result that no longer matches
	// the pending load. The state is left unchanged.
	ErrStaleResponse = errors.New("stale response")
)

// Transition applies e to s. On error the returned state equals s.
func Transition(s State, e Event) (State, error) {
	invalid := func() (State, error) {
		return s, fmt.Errorf("%w: %T in %s", ErrInvalidTransition, e, s.Step)
	}
	stale := func(seq uint64) (State, error) {
		return s, fmt.Errorf("%w: %T seq %d in %s (pending %d)", ErrStaleResponse, e, seq, s.Step, s.Pending)
	}

	next := s
	switch ev := e.(type) {
	case SplashFinished:
		if s.Step != StepSplash {
			return invalid()
		}
		next.Step = StepLogin

	case ShowRegister:
		if s.Step != StepLogin {
			return invalid()
		}
		next.Step = StepRegister

	case ShowLogin:
		if s.Step != StepRegister {
			return invalid()
		}
		next.Step = StepLogin

	case LoggedIn:
		if s.Step != StepLogin {
			return invalid()
		}
		next.Step = StepLocation

	case Registered:
		if s.Step != StepRegister {
			return invalid()
		}
		if ev.Location != "" {
			next.Location = ev.Location
			next.LatLng = ev.LatLng
		}
		next.Step = StepLocation

	case LocationChosen:
		if s.Step != StepLocation {
			return invalid()
		}
		next.Language = ev.Language
		next.Location = ev.Location
		next.LatLng = ev.LatLng
		next.Step = StepSoil

	case SoilChosen:
		if s.Step != StepSoil {
			return invalid()
		}
		next.SoilColor = ev.SoilColor
		next.Step = StepSeason

	case SeasonChosen:
		if s.Step != StepSeason {
			return invalid()
		}
		next.Season = ev.Season
		next.Error = ""
		next.Pending++
		next.Step = StepLoadingSuggestions

	case SuggestionsLoaded:
		if s.Step != StepLoadingSuggestions || ev.Seq != s.Pending {
			return stale(ev.Seq)
		}
		next.Suggestions = ev.Result
		next.Step = StepSuggestions

	case SuggestionsFailed:
		if s.Step != StepLoadingSuggestions || ev.Seq != s.Pending {
			return stale(ev.Seq)
		}
		next.Error = FetchErrorMessage(s.Language)
		next.Step = StepSeason

	case CropSelected:
		if s.Step != StepSuggestions && s.Step != StepDetails {
			return invalid()
		}
		next.SelectedCrop = ev.Crop
		next.Error = ""
		next.Pending++
		next.Step = StepLoadingDetails

	case DetailsLoaded:
		if s.Step != StepLoadingDetails || ev.Seq != s.Pending {
			return stale(ev.Seq)
		}
		next.Details = ev.Result
		next.Step = StepDetails

	case DetailsFailed:
		if s.Step != StepLoadingDetails || ev.Seq != s.Pending {
			return stale(ev.Seq)
		}
		next.Error = FetchErrorMessage(s.Language)
		next.Step = StepSuggestions

	case Back:
		switch s.Step {
		case StepSoil:
			next.Step = StepLocation
		case StepSeason:
			next.Step = StepSoil
		case StepSuggestions:
			next.Step = StepSeason
		case StepDetails:
			next.Step = StepSuggestions
		default:
			return invalid()
		}

	case Restart:
		switch s.Step {
		case StepSplash, StepLogin, StepRegister, StepLocation:
			return invalid()
		}
		next.Suggestions = nil
		next.Details = nil
		next.Error = ""
		next.Step = StepLocation

	case Logout:
		if s.Step == StepSplash {
			return invalid()
		}
		next.Location = ""
		next.LatLng = nil
		next.Suggestions = nil
		next.Details = nil
		next.Error = ""
		next.Step = StepLogin

	case LanguageChanged:
		switch s.Step {
		case StepSplash, StepLogin, StepRegister:
			return invalid()
		}
		next.Language = ev.Language

	default:
		return invalid()
	}
	return next, nil
}
