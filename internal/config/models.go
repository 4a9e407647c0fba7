package config

import "github.com/af-corp/shetkari-gateway/internal/types"

// ModelsConfig maps each request kind to the Gemini model that serves it.
type ModelsConfig struct {
	Models map[types.RequestKind]ModelMapping `yaml:"models"`
}

type ModelMapping struct {
	Model       string `yaml:"model"`
	DisplayName string `yaml:"display_name,omitempty"`
}

const (
	DefaultTextModel      = "gemini-3-flash-preview"
	DefaultGroundingModel = "gemini-2.5-flash"
	DefaultImageModel     = "gemini-2.5-flash-image"
)

func DefaultModels() *ModelsConfig {
	return &ModelsConfig{
		Models: map[types.RequestKind]ModelMapping{
			types.KindCropSuggestions: {Model: DefaultTextModel},
			types.KindCropDetails:     {Model: DefaultGroundingModel},
			types.KindPriceTrends:     {Model: DefaultTextModel},
			types.KindCropImage:       {Model: DefaultImageModel},
			types.KindLogo:            {Model: DefaultImageModel},
		},
	}
}

// ModelFor returns the configured model for kind, falling back to the
// built-in default when the mapping is missing or empty.
func (m *ModelsConfig) ModelFor(kind types.RequestKind) string {
	if m != nil {
		if mapping, ok := m.Models[kind]; ok && mapping.Model != "" {
			return mapping.Model
		}
	}
	return DefaultModels().Models[kind].Model
}
