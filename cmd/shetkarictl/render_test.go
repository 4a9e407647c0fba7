package main

import (
	"strings"
	"testing"

	"github.com/af-corp/shetkari-gateway/internal/types"
)

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		ext     string
		wantErr bool
	}{
		{"png", "data:image/png;base64,aGVsbG8=", "hello", ".png", false},
		{"jpeg", "data:image/jpeg;base64,aGVsbG8=", "hello", ".jpg", false},
		{"not data url", "https://example.com/a.png", "", "", true},
		{"no comma", "data:image/png;base64", "", "", true},
		{"not base64", "data:image/png,hello", "", "", true},
		{"bad payload", "data:image/png;base64,!!!", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ext, err := decodeDataURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.want || ext != tt.ext {
				t.Errorf("got %q %q, want %q %q", data, ext, tt.want, tt.ext)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Onion":           "onion",
		"  Green Chilli ": "green-chilli",
		"NPK 19:19:19":    "npk-19-19-19",
		"":                "image",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderSuggestions(t *testing.T) {
	out := renderSuggestions(&types.CropSuggestionResult{
		WeatherForecast: "Warm and dry",
		WeatherDetails:  types.WeatherDetails{Temperature: "32°C", Humidity: "40%", RainChance: "10%"},
		SuggestedCrops: []types.CropSuggestion{
			{Name: "Soybean", Reason: "Suits black soil", ExpectedYield: "10 q/acre", Profitability: "High"},
			{Name: "Cotton", Reason: "Long season", ExpectedYield: "8 q/acre", Profitability: "Medium"},
		},
	})
	for _, want := range []string{"Warm and dry", "32°C", "1. Soybean", "2. Cotton", "10 q/acre"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDetails(t *testing.T) {
	out, err := renderDetails(&types.CropDetailResult{
		Markdown: "## Sowing\n\nSow after the first rains.",
		MapLinks: []types.MapLink{{Title: "Krishi Seva Kendra", URI: "https://maps.google.com/?cid=1"}},
	}, 80)
	if err != nil {
		t.Fatalf("renderDetails: %v", err)
	}
	for _, want := range []string{"Sowing", "first rains", "Krishi Seva Kendra", "https://maps.google.com/?cid=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPriceTrend(t *testing.T) {
	out := renderPriceTrend("Onion", types.PriceTrendResult{
		{Month: "Jan", Price: 1000},
		{Month: "Feb", Price: 2000},
		{Month: "Mar", Price: 0},
	}, 10)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if n := strings.Count(lines[1], "█"); n != 5 {
		t.Errorf("Jan bar = %d cells, want 5", n)
	}
	if n := strings.Count(lines[2], "█"); n != 10 {
		t.Errorf("Feb bar = %d cells, want 10", n)
	}
	if n := strings.Count(lines[3], "█"); n != 0 {
		t.Errorf("Mar bar = %d cells, want 0", n)
	}

	empty := renderPriceTrend("Onion", nil, 10)
	if !strings.Contains(empty, "no data") {
		t.Errorf("empty trend should say no data, got %q", empty)
	}
}

func TestLoadConfig_MissingDir(t *testing.T) {
	old := configDir
	configDir = t.TempDir()
	defer func() { configDir = old }()
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, models, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Gemini.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want env value", cfg.Gemini.APIKey)
	}
	if models.ModelFor(types.KindCropSuggestions) == "" {
		t.Error("expected default model for crop suggestions")
	}
}
