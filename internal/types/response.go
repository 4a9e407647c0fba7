package types

type CropSuggestion struct {
	Name          string `json:"name"`
	Reason        string `json:"reason"`
	ExpectedYield string `json:"expectedYield"`
	Profitability string `json:"profitability"`
}

// WeatherDetails holds display strings exactly as produced by the model; no unit
// normalization is applied.
type WeatherDetails struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	RainChance  string `json:"rainChance"`
}

type CropSuggestionResult struct {
	WeatherForecast string           `json:"weatherForecast"`
	WeatherDetails  WeatherDetails   `json:"weatherDetails"`
	SuggestedCrops  []CropSuggestion `json:"suggestedCrops"`
}

type MapLink struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type CropDetailResult struct {
	Markdown string    `json:"markdown"`
	MapLinks []MapLink `json:"mapLinks"`
}

type PriceTrendPoint struct {
	Month string  `json:"month"`
	Price float64 `json:"price"`
}

// PriceTrendResult is kept in the order returned by the service.
type PriceTrendResult []PriceTrendPoint

// ImageResponse is the body returned by the image generation endpoints.
type ImageResponse struct {
	ImageURL string `json:"imageUrl"`
}

type HealthResponse struct {
	Status string `json:"status"`
	HasKey bool   `json:"hasKey"`
	Env    string `json:"env"`
}
