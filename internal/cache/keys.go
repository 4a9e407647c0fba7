package cache

import (
	"fmt"

	"github.com/af-corp/shetkari-gateway/internal/types"
)

// LogoKey is the fixed key for the generated application logo.
const LogoKey = "smart_shetkari_logo"

// SuggestionsKey fingerprints a crop suggestion request. Field values are
// joined verbatim; no normalization is applied.
func SuggestionsKey(rc types.RequestContext) string {
	return fmt.Sprintf("suggestions_%s_%s_%s_%s", rc.Language, rc.Location, rc.SoilColor, rc.Season)
}

func DetailsKey(rc types.RequestContext) string {
	return fmt.Sprintf("details_%s_%s_%s", rc.Language, rc.Location, rc.Query)
}

func PriceTrendsKey(rc types.RequestContext) string {
	return fmt.Sprintf("price_trends_%s_%s_%s", rc.Language, rc.Location, rc.Query)
}

func ImageKey(subject string, aspect types.AspectRatio) string {
	return fmt.Sprintf("image_%s_%s", subject, aspect)
}
