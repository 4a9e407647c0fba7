package gemini

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/af-corp/shetkari-gateway/internal/types"
)

const (
	defaultMapLinkTitle = "Map Link"
	defaultImageMIME    = "image/png"
)

// The raw shapes use pointers so absent fields can be told apart from empty ones.
type rawSuggestions struct {
	WeatherForecast *string            `json:"weatherForecast"`
	WeatherDetails  *rawWeatherDetails `json:"weatherDetails"`
	SuggestedCrops  []*rawCrop         `json:"suggestedCrops"`
}

type rawWeatherDetails struct {
	Temperature *string `json:"temperature"`
	Humidity    *string `json:"humidity"`
	RainChance  *string `json:"rainChance"`
}

type rawCrop struct {
	Name          *string `json:"name"`
	Reason        *string `json:"reason"`
	ExpectedYield *string `json:"expectedYield"`
	Profitability *string `json:"profitability"`
}

type rawPricePoint struct {
	Month *string  `json:"month"`
	Price *float64 `json:"price"`
}

// decodeJSON separates syntax failures (the service sent no usable payload)
// from type mismatches (the payload drifted from the schema).
func decodeJSON(kind types.RequestKind, text string, dest any) error {
	if strings.TrimSpace(text) == "" {
		return &ServiceError{Kind: kind, Msg: "no text returned from AI service"}
	}
	err := json.Unmarshal([]byte(text), dest)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &MalformedResponseError{Kind: kind, Field: typeErr.Field, Err: err}
	}
	return &ServiceError{Kind: kind, Msg: "invalid JSON from AI service", Err: err}
}

func parseSuggestions(text string) (*types.CropSuggestionResult, error) {
	const kind = types.KindCropSuggestions

	var raw rawSuggestions
	if err := decodeJSON(kind, text, &raw); err != nil {
		return nil, err
	}

	missing := func(field string) error {
		return &MalformedResponseError{Kind: kind, Field: field}
	}
	switch {
	case raw.WeatherForecast == nil:
		return nil, missing("weatherForecast")
	case raw.WeatherDetails == nil:
		return nil, missing("weatherDetails")
	case raw.WeatherDetails.Temperature == nil:
		return nil, missing("weatherDetails.temperature")
	case raw.WeatherDetails.Humidity == nil:
		return nil, missing("weatherDetails.humidity")
	case raw.WeatherDetails.RainChance == nil:
		return nil, missing("weatherDetails.rainChance")
	case raw.SuggestedCrops == nil:
		return nil, missing("suggestedCrops")
	}

	out := &types.CropSuggestionResult{
		WeatherForecast: *raw.WeatherForecast,
		WeatherDetails: types.WeatherDetails{
			Temperature: *raw.WeatherDetails.Temperature,
			Humidity:    *raw.WeatherDetails.Humidity,
			RainChance:  *raw.WeatherDetails.RainChance,
		},
		SuggestedCrops: make([]types.CropSuggestion, 0, len(raw.SuggestedCrops)),
	}
	for i, c := range raw.SuggestedCrops {
		field := func(name string) string { return fmt.Sprintf("suggestedCrops[%d].%s", i, name) }
		switch {
		case c == nil:
			return nil, missing(fmt.Sprintf("suggestedCrops[%d]", i))
		case c.Name == nil:
			return nil, missing(field("name"))
		case c.Reason == nil:
			return nil, missing(field("reason"))
		case c.ExpectedYield == nil:
			return nil, missing(field("expectedYield"))
		case c.Profitability == nil:
			return nil, missing(field("profitability"))
		}
		out.SuggestedCrops = append(out.SuggestedCrops, types.CropSuggestion{
			Name:          *c.Name,
			Reason:        *c.Reason,
			ExpectedYield: *c.ExpectedYield,
			Profitability: *c.Profitability,
		})
	}
	return out, nil
}

func parsePriceTrends(text string) (types.PriceTrendResult, error) {
	const kind = types.KindPriceTrends

	var raw []*rawPricePoint
	if err := decodeJSON(kind, text, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, &MalformedResponseError{Kind: kind, Field: "[]"}
	}

	out := make(types.PriceTrendResult, 0, len(raw))
	for i, p := range raw {
		switch {
		case p == nil:
			return nil, &MalformedResponseError{Kind: kind, Field: fmt.Sprintf("[%d]", i)}
		case p.Month == nil:
			return nil, &MalformedResponseError{Kind: kind, Field: fmt.Sprintf("[%d].month", i)}
		case p.Price == nil:
			return nil, &MalformedResponseError{Kind: kind, Field: fmt.Sprintf("[%d].price", i)}
		}
		out = append(out, types.PriceTrendPoint{Month: *p.Month, Price: *p.Price})
	}
	return out, nil
}

// mapLinks extracts location citations from the first candidate's grounding
// metadata. Chunks without a URI are skipped.
func mapLinks(resp *genai.GenerateContentResponse) []types.MapLink {
	links := []types.MapLink{}
	if resp == nil || len(resp.Candidates) == 0 {
		return links
	}
	gm := resp.Candidates[0].GroundingMetadata
	if gm == nil {
		return links
	}
	for _, chunk := range gm.GroundingChunks {
		if chunk == nil || chunk.Maps == nil || chunk.Maps.URI == "" {
			continue
		}
		title := chunk.Maps.Title
		if title == "" {
			title = defaultMapLinkTitle
		}
		links = append(links, types.MapLink{Title: title, URI: chunk.Maps.URI})
	}
	return links
}

// firstImage returns the first inline-data part of the first candidate as a
// data URL. Later candidates are not consulted.
func firstImage(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", false
	}
	for _, part := range cand.Content.Parts {
		if part == nil || part.InlineData == nil {
			continue
		}
		mime := part.InlineData.MIMEType
		if mime == "" {
			mime = defaultImageMIME
		}
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data), true
	}
	return "", false
}
