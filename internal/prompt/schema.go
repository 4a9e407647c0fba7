package prompt

import "google.golang.org/genai"

func stringField() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

// SuggestionsSchema constrains the crop suggestion response.
func SuggestionsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"weatherForecast": stringField(),
			"weatherDetails": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"temperature": stringField(),
					"humidity":    stringField(),
					"rainChance":  stringField(),
				},
				Required: []string{"temperature", "humidity", "rainChance"},
			},
			"suggestedCrops": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":          stringField(),
						"reason":        stringField(),
						"expectedYield": stringField(),
						"profitability": stringField(),
					},
					Required: []string{"name", "reason", "expectedYield", "profitability"},
				},
			},
		},
		Required: []string{"weatherForecast", "weatherDetails", "suggestedCrops"},
	}
}

// PriceTrendSchema constrains the price series response to {month, price} items.
func PriceTrendSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"month": stringField(),
				"price": {Type: genai.TypeNumber},
			},
			Required: []string{"month", "price"},
		},
	}
}
