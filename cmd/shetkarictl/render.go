package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/af-corp/shetkari-gateway/internal/types"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("34"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
)

func renderSuggestions(res *types.CropSuggestionResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Weather") + "\n")
	b.WriteString(res.WeatherForecast + "\n")
	w := res.WeatherDetails
	b.WriteString(faintStyle.Render(fmt.Sprintf("temperature %s  humidity %s  rain %s", w.Temperature, w.Humidity, w.RainChance)) + "\n\n")

	b.WriteString(titleStyle.Render("Suggested crops") + "\n")
	for i, c := range res.SuggestedCrops {
		b.WriteString(headingStyle.Render(fmt.Sprintf("%d. %s", i+1, c.Name)) + "\n")
		b.WriteString("   " + c.Reason + "\n")
		b.WriteString(faintStyle.Render(fmt.Sprintf("   yield: %s  profitability: %s", c.ExpectedYield, c.Profitability)) + "\n")
	}
	return b.String()
}

func renderDetails(res *types.CropDetailResult, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(res.Markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	if len(res.MapLinks) > 0 {
		var b strings.Builder
		b.WriteString(out)
		b.WriteString(titleStyle.Render("Nearby") + "\n")
		for _, l := range res.MapLinks {
			b.WriteString(fmt.Sprintf("  %s\n  %s\n", headingStyle.Render(l.Title), faintStyle.Render(l.URI)))
		}
		out = b.String()
	}
	return out, nil
}

// renderPriceTrend draws one horizontal bar per month, scaled so the highest
// price fills width columns.
func renderPriceTrend(crop string, res types.PriceTrendResult, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(crop+" price trend") + faintStyle.Render(" (INR per quintal)") + "\n")
	if len(res) == 0 {
		b.WriteString(faintStyle.Render("no data") + "\n")
		return b.String()
	}

	var top float64
	monthWidth := 0
	for _, p := range res {
		top = max(top, p.Price)
		if n := len([]rune(p.Month)); n > monthWidth {
			monthWidth = n
		}
	}
	for _, p := range res {
		n := 0
		if top > 0 && p.Price > 0 {
			n = int(p.Price / top * float64(width))
			if n == 0 {
				n = 1
			}
		}
		pad := strings.Repeat(" ", monthWidth-len([]rune(p.Month)))
		b.WriteString(fmt.Sprintf("%s%s %s %.0f\n", p.Month, pad, barStyle.Render(strings.Repeat("█", n)), p.Price))
	}
	return b.String()
}

// decodeDataURL returns the bytes of a base64 data URL and a file extension
// for its MIME type.
func decodeDataURL(url string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return nil, "", errors.New("image is not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("malformed data URL")
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", errors.New("data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	ext := ".png"
	switch mimeType {
	case "image/png":
	case "image/jpeg":
		ext = ".jpg"
	default:
		if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	return data, ext, nil
}

// slug turns a subject into a file name.
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '-'
		}
		return r
	}, s)
	if s == "" {
		return "image"
	}
	return s
}
