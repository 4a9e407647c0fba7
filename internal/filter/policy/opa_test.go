package policy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/af-corp/shetkari-gateway/internal/config"
	"github.com/af-corp/shetkari-gateway/internal/filter"
	"github.com/af-corp/shetkari-gateway/internal/types"
)

func testCfg() func() config.PolicyFilterConfig {
	return func() config.PolicyFilterConfig {
		return config.PolicyFilterConfig{
			Enabled:           true,
			BundlePath:        filepath.Join("..", "..", "..", "configs", "policies"),
			EvaluationTimeout: 100 * time.Millisecond,
		}
	}
}

func loadBundledEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e := NewEvaluator(testCfg())
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("failed to load bundled policy: %v", err)
	}
	if !e.Loaded() {
		t.Fatal("bundled policy not loaded")
	}
	return e
}

func TestBundledPolicy(t *testing.T) {
	e := loadBundledEvaluator(t)
	long := strings.Repeat("क", 201)

	tests := []struct {
		name       string
		kind       types.RequestKind
		rc         *types.RequestContext
		wantAllow  bool
		wantReason string
	}{
		{
			name:      "suggestions",
			kind:      types.KindCropSuggestions,
			rc:        &types.RequestContext{Language: types.LangMarathi, Location: "Pune", SoilColor: types.SoilBlack, Season: types.SeasonKharif},
			wantAllow: true,
		},
		{
			name:      "image default aspect",
			kind:      types.KindCropImage,
			rc:        &types.RequestContext{Query: "Onion"},
			wantAllow: true,
		},
		{
			name:       "image bad aspect",
			kind:       types.KindCropImage,
			rc:         &types.RequestContext{Query: "Onion", AspectRatio: "2:1"},
			wantReason: "unsupported aspect ratio",
		},
		{
			name:       "long location",
			kind:       types.KindCropDetails,
			rc:         &types.RequestContext{Location: long, Query: "Onion"},
			wantReason: "location longer than 200",
		},
		{
			name:       "long query",
			kind:       types.KindPriceTrends,
			rc:         &types.RequestContext{Location: "Pune", Query: long},
			wantReason: "query longer than 200",
		},
		{
			name:      "200 runes is fine",
			kind:      types.KindPriceTrends,
			rc:        &types.RequestContext{Location: strings.Repeat("क", 200)},
			wantAllow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, reason, err := e.Evaluate(context.Background(), NewInput(tt.kind, tt.rc, time.Now()))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if allowed != tt.wantAllow {
				t.Errorf("allowed = %v, want %v (reason %q)", allowed, tt.wantAllow, reason)
			}
			if !strings.Contains(reason, tt.wantReason) {
				t.Errorf("reason = %q, want it to contain %q", reason, tt.wantReason)
			}
		})
	}
}

func TestNewInput(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)
	in := NewInput(types.KindCropDetails, &types.RequestContext{
		Language: types.LangHindi,
		Location: "नाशिक",
		LatLng:   &types.LatLng{Lat: 20, Lng: 73.8},
		Query:    "Onion",
	}, now)

	if in.Request.Kind != "crop_details" || in.Request.Language != "hi" {
		t.Errorf("request = %+v", in.Request)
	}
	if in.Request.LocationLength != 5 {
		t.Errorf("location length = %d, want 5 runes", in.Request.LocationLength)
	}
	if !in.Request.HasCoordinates {
		t.Error("expected has_coordinates")
	}
	if in.Time.Hour != 9 || in.Time.Day != "Monday" {
		t.Errorf("time = %+v", in.Time)
	}
}

func TestEvaluator_NoPoliciesLoaded_FailClosed(t *testing.T) {
	e := NewEvaluator(testCfg())

	allowed, _, _ := e.Evaluate(context.Background(), PolicyInput{})
	if allowed {
		t.Error("expected denied when no policies loaded (fail closed)")
	}
	if r := e.ScanRequest(context.Background(), types.KindLogo, nil); r.Action != filter.ActionBlock {
		t.Errorf("action = %s, want block", r.Action)
	}
}

func TestEvaluator_ScanRequest(t *testing.T) {
	e := loadBundledEvaluator(t)

	pass := e.ScanRequest(context.Background(), types.KindCropImage, &types.RequestContext{Query: "Wheat", AspectRatio: types.Aspect4x3})
	if pass.Action != filter.ActionPass || pass.FilterName != "policy" {
		t.Errorf("got %+v, want pass from policy", pass)
	}

	block := e.ScanRequest(context.Background(), types.KindCropImage, &types.RequestContext{Query: "Wheat", AspectRatio: "21:9"})
	if block.Action != filter.ActionBlock {
		t.Errorf("action = %s, want block", block.Action)
	}
	if !strings.HasPrefix(block.Message, "Request denied by policy: ") {
		t.Errorf("message = %q", block.Message)
	}
}

func TestEvaluator_Disabled(t *testing.T) {
	e := NewEvaluator(func() config.PolicyFilterConfig {
		return config.PolicyFilterConfig{Enabled: false}
	})
	if e.Enabled() {
		t.Error("expected evaluator to be disabled")
	}
}

func TestEvaluator_CustomDenyAllPolicy(t *testing.T) {
	denyAll := `
package shetkari.policy

import rego.v1

allow := false
reason := "all requests denied"
`
	e := NewEvaluator(testCfg())
	if err := e.LoadFromModules(context.Background(), map[string]string{"deny.rego": denyAll}); err != nil {
		t.Fatalf("failed to load policy: %v", err)
	}

	allowed, reason, err := e.Evaluate(context.Background(), PolicyInput{Request: PolicyReq{Kind: "logo"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected denied by deny-all policy")
	}
	if reason != "all requests denied" {
		t.Errorf("expected 'all requests denied', got %s", reason)
	}
}

func TestLoad_EmptyDirLeavesFailClosed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("not rego"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := NewEvaluator(func() config.PolicyFilterConfig {
		return config.PolicyFilterConfig{Enabled: true, BundlePath: dir}
	})
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if e.Loaded() {
		t.Error("Loaded() = true with no modules")
	}
	if allowed, _, _ := e.Evaluate(context.Background(), PolicyInput{}); allowed {
		t.Error("expected fail closed with no modules")
	}
}

func TestLoad_MissingDir(t *testing.T) {
	e := NewEvaluator(func() config.PolicyFilterConfig {
		return config.PolicyFilterConfig{BundlePath: filepath.Join(t.TempDir(), "nope")}
	})
	if err := e.Load(context.Background()); err == nil {
		t.Error("expected error for missing bundle dir")
	}
}

func TestReadBundle(t *testing.T) {
	fsys := fstest.MapFS{
		"main.rego":               {Data: []byte("package a")},
		"limits/fields.rego":      {Data: []byte("package b")},
		"limits/fields_test.rego": {Data: []byte("package b_test")},
		".git/hooks.rego":         {Data: []byte("package hidden")},
		"README.md":               {Data: []byte("docs")},
	}

	modules, err := ReadBundle(fsys)
	if err != nil {
		t.Fatalf("ReadBundle: %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %v", modules)
	}
	if modules["main.rego"] != "package a" || modules["limits/fields.rego"] != "package b" {
		t.Errorf("unexpected modules: %v", modules)
	}
}
