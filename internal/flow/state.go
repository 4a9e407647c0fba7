// Package flow is the farmer-facing wizard: a linear state machine that
// collects language, location, soil colour and season, then drives the AI
// client through the suggestion and detail loading steps.
package flow

import "github.com/af-corp/shetkari-gateway/internal/types"

type Step int

const (
	StepSplash Step = iota
	StepLogin
	StepRegister
	StepLocation
	StepSoil
	StepSeason
	StepLoadingSuggestions
	StepSuggestions
	StepLoadingDetails
	StepDetails
)

var stepNames = [...]string{
	StepSplash:             "SPLASH",
	StepLogin:              "LOGIN",
	StepRegister:           "REGISTER",
	StepLocation:           "LOCATION",
	StepSoil:               "SOIL",
	StepSeason:             "SEASON",
	StepLoadingSuggestions: "LOADING_SUGGESTIONS",
	StepSuggestions:        "SUGGESTIONS",
	StepLoadingDetails:     "LOADING_DETAILS",
	StepDetails:            "DETAILS",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "UNKNOWN"
	}
	return stepNames[s]
}

// Loading reports whether the step waits on an AI response.
func (s Step) Loading() bool {
	return s == StepLoadingSuggestions || s == StepLoadingDetails
}

// State is an immutable snapshot of the wizard. Transition returns a new
// value; callers never mutate a State in place.
type State struct {
	Step      Step
	Language  types.Language
	Location  string
	LatLng    *types.LatLng
	SoilColor types.SoilColor
	Season    types.Season

	Suggestions  *types.CropSuggestionResult
	SelectedCrop string
	Details      *types.CropDetailResult

	// Error is the localized banner shown after a failed load.
	Error string

	// Pending identifies the most recent load. Responses carrying any other
	// sequence number are stale.
	Pending uint64
}

// Initial returns the state the app starts in. Marathi is the default language.
func Initial() State {
	return State{Step: StepSplash, Language: types.LangMarathi}
}

// SuggestionsRequest is the request context for the suggestions load.
func (s State) SuggestionsRequest() types.RequestContext {
	return types.RequestContext{
		Language:  s.Language,
		Location:  s.Location,
		SoilColor: s.SoilColor,
		Season:    s.Season,
	}
}

// DetailsRequest is the request context for the selected crop's details.
func (s State) DetailsRequest() types.RequestContext {
	return types.RequestContext{
		Language: s.Language,
		Location: s.Location,
		LatLng:   s.LatLng,
		Query:    s.SelectedCrop,
	}
}
