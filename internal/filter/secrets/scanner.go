package secrets

import (
	"context"
	"fmt"

	"github.com/af-corp/shetkari-gateway/internal/config"
	"github.com/af-corp/shetkari-gateway/internal/filter"
	"github.com/af-corp/shetkari-gateway/internal/types"
)

type Detection struct {
	PatternName string
	Category    Category
	Start       int // byte offset
	End         int
}

// Scanner blocks requests whose free-text fields carry credentials or, when
// configured, identity numbers.
type Scanner struct {
	patterns []Pattern
	cfg      func() config.SecretsFilterConfig
}

// NewScanner creates a scanner with the default secret patterns.
func NewScanner(cfg func() config.SecretsFilterConfig) *Scanner {
	return &Scanner{patterns: DefaultPatterns(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "secrets" }
func (s *Scanner) Enabled() bool { return s.cfg().Enabled }

// Scan returns every match in text, in pattern order. Identity patterns are
// skipped unless identity_numbers is enabled.
func (s *Scanner) Scan(text string) []Detection {
	identity := s.cfg().IdentityNumbers
	var detections []Detection
	for _, p := range s.patterns {
		if p.Category == CategoryIdentity && !identity {
			continue
		}
		for _, loc := range p.Regex.FindAllStringIndex(text, -1) {
			if p.Valid != nil && !p.Valid(text, loc[0], loc[1]) {
				continue
			}
			detections = append(detections, Detection{
				PatternName: p.Name,
				Category:    p.Category,
				Start:       loc[0],
				End:         loc[1],
			})
		}
	}
	return detections
}

func (s *Scanner) ScanFields(fields []string) []Detection {
	var detections []Detection
	for _, f := range fields {
		detections = append(detections, s.Scan(f)...)
	}
	return detections
}

// ScanRequest implements filter.Filter. Any detection blocks the request.
func (s *Scanner) ScanRequest(_ context.Context, _ types.RequestKind, rc *types.RequestContext) filter.Result {
	if rc == nil {
		return filter.Result{Action: filter.ActionPass, FilterName: "secrets"}
	}
	detections := s.ScanFields(rc.FreeText())
	if len(detections) == 0 {
		return filter.Result{Action: filter.ActionPass, FilterName: "secrets"}
	}
	return filter.Result{
		Action:     filter.ActionBlock,
		FilterName: "secrets",
		Message:    fmt.Sprintf("Request blocked: %s detected in input", detections[0].PatternName),
		Detections: len(detections),
	}
}
