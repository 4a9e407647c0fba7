package injection

import (
	"context"
	"fmt"
	"strings"

	"github.com/af-corp/shetkari-gateway/internal/config"
	"github.com/af-corp/shetkari-gateway/internal/filter"
	"github.com/af-corp/shetkari-gateway/internal/types"
)

type Detection struct {
	RuleName string
	Severity float64
	Category Category
	Field    int // index into the scanned fields
}

// Scanner scans user-typed fields for prompt injection patterns.
type Scanner struct {
	rules []Rule
	cfg   func() config.InjectionFilterConfig
}

// NewScanner creates a prompt injection scanner.
func NewScanner(cfg func() config.InjectionFilterConfig) *Scanner {
	return &Scanner{rules: DefaultRules(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "injection" }
func (s *Scanner) Enabled() bool { return s.cfg().Enabled }

// Scan returns one detection per rule that matches text. Invisible format
// characters are dropped first so "ig\u200bnore" cannot slip past a rule.
func (s *Scanner) Scan(text string) []Detection {
	text = fold(text)
	var detections []Detection
	for _, r := range s.rules {
		if r.Regex.MatchString(text) {
			detections = append(detections, Detection{
				RuleName: r.Name,
				Severity: r.Severity,
				Category: r.Category,
			})
		}
	}
	return detections
}

// ScanFields scans each field and returns detections and the max severity score.
func (s *Scanner) ScanFields(fields []string) ([]Detection, float64) {
	var all []Detection
	maxScore := 0.0
	for i, f := range fields {
		for _, d := range s.Scan(f) {
			d.Field = i
			all = append(all, d)
			maxScore = max(maxScore, d.Severity)
		}
	}
	return all, maxScore
}

// fold removes zero-width and bidi control characters and collapses runs of
// whitespace. ZWJ and ZWNJ are dropped too; rules never depend on Devanagari
// conjunct shaping.
func fold(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 0x200B && r <= 0x200F, r >= 0x202A && r <= 0x202E, r >= 0x2060 && r <= 0x2064, r == 0xFEFF, r == 0x00AD:
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ScanRequest implements filter.Filter.
func (s *Scanner) ScanRequest(_ context.Context, _ types.RequestKind, rc *types.RequestContext) filter.Result {
	if rc == nil {
		return filter.Result{Action: filter.ActionPass, FilterName: "injection"}
	}
	detections, score := s.ScanFields(rc.FreeText())
	cfg := s.cfg()

	if score >= cfg.BlockThreshold {
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: "injection",
			Message:    fmt.Sprintf("Request blocked: prompt injection detected (score %.2f)", score),
			Detections: len(detections),
			Score:      score,
		}
	}
	if score >= cfg.FlagThreshold {
		return filter.Result{
			Action:     filter.ActionFlag,
			FilterName: "injection",
			Detections: len(detections),
			Score:      score,
		}
	}
	return filter.Result{Action: filter.ActionPass, FilterName: "injection", Score: score}
}
