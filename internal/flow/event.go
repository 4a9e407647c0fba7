package flow

import "github.com/af-corp/shetkari-gateway/internal/types"

// Event is one of the concrete event types below.
type Event interface {
	event()
}

type (
	// SplashFinished fires when the splash timer ends or the user skips it.
	SplashFinished struct{}
	ShowRegister   struct{}
	ShowLogin      struct{}
	LoggedIn       struct{}

	// Registered carries the optional location entered during sign-up.
	Registered struct {
		Location string
		LatLng   *types.LatLng
	}

	LocationChosen struct {
		Language types.Language
		Location string
		LatLng   *types.LatLng
	}

	SoilChosen struct {
		SoilColor types.SoilColor
	}

	SeasonChosen struct {
		Season types.Season
	}

	SuggestionsLoaded struct {
		Seq    uint64
		Result *types.CropSuggestionResult
	}

	SuggestionsFailed struct {
		Seq uint64
		Err error
	}

	CropSelected struct {
		Crop string
	}

	DetailsLoaded struct {
		Seq    uint64
		Result *types.CropDetailResult
	}

	DetailsFailed struct {
		Seq uint64
		Err error
	}

	Back    struct{}
	Restart struct{}
	Logout  struct{}

	LanguageChanged struct {
		Language types.Language
	}
)

func (SplashFinished) event()    {}
func (ShowRegister) event()      {}
func (ShowLogin) event()         {}
func (LoggedIn) event()          {}
func (Registered) event()        {}
func (LocationChosen) event()    {}
func (SoilChosen) event()        {}
func (SeasonChosen) event()      {}
func (SuggestionsLoaded) event() {}
func (SuggestionsFailed) event() {}
func (CropSelected) event()      {}
func (DetailsLoaded) event()     {}
func (DetailsFailed) event()     {}
func (Back) event()              {}
func (Restart) event()           {}
func (Logout) event()            {}
func (LanguageChanged) event()   {}
