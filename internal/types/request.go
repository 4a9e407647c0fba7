package types

// RequestKind tags each of the operations the gateway can issue against the AI service.
type RequestKind string

const (
	KindCropSuggestions RequestKind = "crop_suggestions"
	KindCropDetails     RequestKind = "crop_details"
	KindPriceTrends     RequestKind = "price_trends"
	KindCropImage       RequestKind = "crop_image"
	KindLogo            RequestKind = "logo"
)

// LatLng is a coordinate pair used to bias location-grounded lookups.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RequestContext is the set of farmer-supplied fields needed to build one
// outbound AI request. It is built fresh from user input for every request and
// never mutated afterwards.
type RequestContext struct {
	Language  Language  `json:"language"`
	Location  string    `json:"location"`
	LatLng    *LatLng   `json:"latLng,omitempty"`
	SoilColor SoilColor `json:"soilColor,omitempty"`
	Season    Season    `json:"season,omitempty"`
	Query     string    `json:"query,omitempty"`

	// Image requests only.
	AspectRatio AspectRatio `json:"aspectRatio,omitempty"`
}

// FreeText returns the user-typed fields that end up verbatim inside prompts.
func (rc *RequestContext) FreeText() []string {
	var out []string
	if rc.Location != "" {
		out = append(out, rc.Location)
	}
	if rc.Query != "" {
		out = append(out, rc.Query)
	}
	return out
}
