// Package policy evaluates Rego request policies with OPA.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/af-corp/shetkari-gateway/internal/config"
	"github.com/af-corp/shetkari-gateway/internal/filter"
	"github.com/af-corp/shetkari-gateway/internal/types"
)

const query = "[data.shetkari.policy.allow, data.shetkari.policy.reason]"

// PolicyInput is the data sent to OPA for evaluation.
type PolicyInput struct {
	Request PolicyReq  `json:"request"`
	Time    PolicyTime `json:"time"`
}

type PolicyReq struct {
	Kind           string `json:"kind"`
	Language       string `json:"language"`
	SoilColor      string `json:"soil_color"`
	Season         string `json:"season"`
	AspectRatio    string `json:"aspect_ratio"`
	HasCoordinates bool   `json:"has_coordinates"`
	LocationLength int    `json:"location_length"`
	QueryLength    int    `json:"query_length"`
}

type PolicyTime struct {
	Hour int    `json:"hour"`
	Day  string `json:"day"`
}

// NewInput builds the evaluation input for one request. Free text is reduced
// to rune counts; policies never see what the farmer typed.
func NewInput(kind types.RequestKind, rc *types.RequestContext, now time.Time) PolicyInput {
	in := PolicyInput{
		Request: PolicyReq{Kind: string(kind)},
		Time: PolicyTime{
			Hour: now.Hour(),
			Day:  now.Weekday().String(),
		},
	}
	if rc != nil {
		in.Request.Language = string(rc.Language)
		in.Request.SoilColor = string(rc.SoilColor)
		in.Request.Season = string(rc.Season)
		in.Request.AspectRatio = string(rc.AspectRatio)
		in.Request.HasCoordinates = rc.LatLng != nil
		in.Request.LocationLength = utf8.RuneCountInString(rc.Location)
		in.Request.QueryLength = utf8.RuneCountInString(rc.Query)
	}
	return in
}

// Evaluator implements filter.Filter using OPA.
type Evaluator struct {
	mu       sync.RWMutex
	prepared *rego.PreparedEvalQuery
	cfg      func() config.PolicyFilterConfig
}

// NewEvaluator creates a policy evaluator. Call Load() to compile policies.
func NewEvaluator(cfg func() config.PolicyFilterConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

func (e *Evaluator) Name() string  { return "policy" }
func (e *Evaluator) Enabled() bool { return e.cfg().Enabled }

// Load compiles Rego modules from the bundle path.
func (e *Evaluator) Load(ctx context.Context) error {
	cfg := e.cfg()
	modules, err := ReadBundle(os.DirFS(cfg.BundlePath))
	if err != nil {
		return fmt.Errorf("load bundle %s: %w", cfg.BundlePath, err)
	}
	if len(modules) == 0 {
		slog.Warn("no rego files found", "path", cfg.BundlePath)
		return nil
	}
	if err := e.LoadFromModules(ctx, modules); err != nil {
		return err
	}
	slog.Info("opa policies loaded", "modules", len(modules), "path", cfg.BundlePath)
	return nil
}

// LoadFromModules compiles policies from module sources keyed by file name.
func (e *Evaluator) LoadFromModules(ctx context.Context, modules map[string]string) error {
	opts := []func(*rego.Rego){rego.Query(query)}
	for name, src := range modules {
		opts = append(opts, rego.Module(name, src))
	}

	prepared, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return fmt.Errorf("prepare rego: %w", err)
	}

	e.mu.Lock()
	e.prepared = &prepared
	e.mu.Unlock()
	return nil
}

// Loaded reports whether a compiled policy is in place.
func (e *Evaluator) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prepared != nil
}

// Evaluate runs the policy against the given input.
func (e *Evaluator) Evaluate(ctx context.Context, input PolicyInput) (bool, string, error) {
	e.mu.RLock()
	prepared := e.prepared
	e.mu.RUnlock()

	if prepared == nil {
		// Fail closed.
		return false, "no policies loaded", nil
	}

	timeout := e.cfg().EvaluationTimeout
	if timeout == 0 {
		timeout = 100 * time.Millisecond
	}

	evalCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := prepared.Eval(evalCtx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Sprintf("policy evaluation error: %v", err), err
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, "no policy result", nil
	}

	// [allow, reason]
	arr, ok := results[0].Expressions[0].Value.([]interface{})
	if !ok || len(arr) < 2 {
		return false, "unexpected policy result format", nil
	}

	allowed, _ := arr[0].(bool)
	reason, _ := arr[1].(string)

	return allowed, reason, nil
}

// ScanRequest implements filter.Filter.
func (e *Evaluator) ScanRequest(ctx context.Context, kind types.RequestKind, rc *types.RequestContext) filter.Result {
	allowed, reason, err := e.Evaluate(ctx, NewInput(kind, rc, time.Now().UTC()))
	if err != nil {
		slog.Error("policy evaluation failed", "kind", kind, "error", err)
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: "policy",
			Message:    "Policy evaluation failed: " + err.Error(),
		}
	}

	if !allowed {
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: "policy",
			Message:    "Request denied by policy: " + reason,
		}
	}

	return filter.Result{Action: filter.ActionPass, FilterName: "policy"}
}
