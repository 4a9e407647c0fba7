// Package prompt renders the natural-language instructions and output schemas
// sent to the generative model. Builders are pure: they never fail and never
// validate enum values; unknown languages render as English.
package prompt

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/af-corp/shetkari-gateway/internal/types"
)

// SuggestedCropCount is the number of crops the suggestions prompt asks for.
const SuggestedCropCount = 6

// PriceTrendMonths is the length of the requested monthly price series.
const PriceTrendMonths = 6

// Suggestions renders the crop suggestion instruction.
func Suggestions(rc types.RequestContext) string {
	lang := rc.Language.Name()

	var b strings.Builder
	b.WriteString("You are an expert agricultural assistant.\n")
	fmt.Fprintf(&b, "Language: %s\n", lang)
	fmt.Fprintf(&b, "Location: %s\n", rc.Location)
	fmt.Fprintf(&b, "Soil Color: %s\n", rc.SoilColor)
	fmt.Fprintf(&b, "Season: %s\n\n", rc.Season)
	fmt.Fprintf(&b, "Provide a short weather forecast for this location and suggest %d suitable crops to plant in the %s season based on the soil color and weather.\n", SuggestedCropCount, rc.Season)
	b.WriteString("Also provide the current estimated temperature, humidity, and chance of rain for this location and season.\n")
	b.WriteString("For each suggested crop, include the expected yield (e.g., \"15-20 quintals per acre\") and estimated profitability/market demand.\n")
	b.WriteString("Return a JSON object with 'weatherForecast' (string), 'weatherDetails' (object with 'temperature', 'humidity', 'rainChance'), and 'suggestedCrops' (array of objects with 'name', 'reason', 'expectedYield', and 'profitability').\n")
	fmt.Fprintf(&b, "All text MUST be in %s.", lang)
	return b.String()
}

// Details renders the grounded crop / product / market guidance instruction.
func Details(rc types.RequestContext) string {
	lang := rc.Language.Name()

	var b strings.Builder
	b.WriteString("You are an expert agricultural assistant.\n")
	fmt.Fprintf(&b, "Language: %s\n", lang)
	fmt.Fprintf(&b, "Location: %s\n", rc.Location)
	fmt.Fprintf(&b, "User Query / Selected Item: %s\n\n", rc.Query)
	b.WriteString("Please provide detailed information based on the user's query in Markdown format.\n")
	b.WriteString("- If the query is a **Crop**: Provide recommended pesticides/fertilizers, estimated prices, growth duration, and estimated market price.\n")
	b.WriteString("- If the query is a **Pesticide/Fertilizer**: Provide its usage, benefits, estimated price, AND a dedicated section for **Clear Usage Instructions & Safety Precautions**.\n")
	b.WriteString("- If the query is about **Market Prices**: Provide the current estimated market prices for the requested item in the given location.\n")
	b.WriteString("- Always include: Nearby shops where the user can buy the relevant agricultural products (use Google Maps tool to find real places).\n\n")
	fmt.Fprintf(&b, "All text MUST be in %s.", lang)
	return b.String()
}

// PriceTrend renders the monthly price series instruction for rc.Query.
func PriceTrend(rc types.RequestContext) string {
	lang := rc.Language.Name()

	var b strings.Builder
	b.WriteString("You are an expert agricultural economist.\n")
	fmt.Fprintf(&b, "Language: %s\n", lang)
	fmt.Fprintf(&b, "Location: %s\n", rc.Location)
	fmt.Fprintf(&b, "Crop/Product: %s\n\n", rc.Query)
	fmt.Fprintf(&b, "Provide the estimated average market price trends for this crop/product over the last %d months in the given location.\n", PriceTrendMonths)
	fmt.Fprintf(&b, "Return a JSON array of objects, where each object has 'month' (string, e.g., \"Jan\", \"Feb\", translated to %s) and 'price' (number, estimated price in local currency per standard unit, e.g., per quintal or kg).\n", lang)
	b.WriteString("Ensure the prices reflect realistic market fluctuations.")
	return b.String()
}

// CropImage renders the photorealistic farm photograph template for subject.
func CropImage(subject string) string {
	return fmt.Sprintf("A highly realistic, photorealistic photograph of %s in an agricultural farm setting. "+
		"Natural sunlight, highly detailed, 4k resolution, professional nature photography. No illustrations or cartoons.", subject)
}

// Logo is the fixed app logo template.
func Logo() string {
	return "A modern, clean, and vibrant logo for an app called 'Smart Shetkari' (Smart Farmer). " +
		"The logo should feature a happy Indian farmer, a green leaf, a smartphone or wifi signal, and a sun. " +
		"White background, vector art style, high quality, professional."
}

// DetailsTools returns the maps grounding tool and, when coordinates are
// present, the retrieval config biasing results to them.
func DetailsTools(rc types.RequestContext) ([]*genai.Tool, *genai.ToolConfig) {
	tools := []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}}
	if rc.LatLng == nil {
		return tools, nil
	}
	return tools, &genai.ToolConfig{
		RetrievalConfig: &genai.RetrievalConfig{
			LatLng: &genai.LatLng{
				Latitude:  genai.Ptr(rc.LatLng.Lat),
				Longitude: genai.Ptr(rc.LatLng.Lng),
			},
		},
	}
}
