package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/af-corp/shetkari-gateway/internal/config"
	"github.com/af-corp/shetkari-gateway/internal/filter"
	"github.com/af-corp/shetkari-gateway/internal/gemini"
	"github.com/af-corp/shetkari-gateway/internal/httputil"
	"github.com/af-corp/shetkari-gateway/internal/telemetry"
	"github.com/af-corp/shetkari-gateway/internal/types"
)

const maxBodyBytes = 64 << 10

// Service is the AI client behind the handlers. *gemini.Client satisfies it.
type Service interface {
	Configured() bool
	CropSuggestions(ctx context.Context, rc types.RequestContext) (*types.CropSuggestionResult, error)
	CropDetails(ctx context.Context, rc types.RequestContext) (*types.CropDetailResult, error)
	PriceTrends(ctx context.Context, rc types.RequestContext) (types.PriceTrendResult, error)
	GenerateCropImage(ctx context.Context, subject string, aspect types.AspectRatio) (string, bool, error)
	GenerateLogo(ctx context.Context) (string, bool, error)
}

// Handler holds dependencies for the gateway HTTP handlers.
type Handler struct {
	svc         Service
	cfg         func() *config.Config
	filterChain *filter.Chain
	metrics     *telemetry.Metrics
}

func NewHandler(svc Service, cfg func() *config.Config, filterChain *filter.Chain, metrics *telemetry.Metrics) *Handler {
	return &Handler{
		svc:         svc,
		cfg:         cfg,
		filterChain: filterChain,
		metrics:     metrics,
	}
}

type suggestionsRequest struct {
	Language  types.Language  `json:"language"`
	Location  string          `json:"location"`
	SoilColor types.SoilColor `json:"soilColor"`
	Season    types.Season    `json:"season"`
}

type detailsRequest struct {
	Language types.Language `json:"language"`
	Location string         `json:"location"`
	LatLng   *types.LatLng  `json:"latLng"`
	Query    string         `json:"query"`
}

type priceTrendsRequest struct {
	Language types.Language `json:"language"`
	Location string         `json:"location"`
	CropName string         `json:"cropName"`
}

type cropImageRequest struct {
	Query       string            `json:"query"`
	AspectRatio types.AspectRatio `json:"aspectRatio"`
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, types.HealthResponse{
		Status: "ok",
		HasKey: h.svc.Configured(),
		Env:    h.cfg().Server.Environment,
	})
}

// CropSuggestions handles POST /crop-suggestions
func (h *Handler) CropSuggestions(w http.ResponseWriter, r *http.Request) {
	var body suggestionsRequest
	if !h.decode(w, r, &body) {
		return
	}
	rc := types.RequestContext{
		Language:  body.Language,
		Location:  body.Location,
		SoilColor: body.SoilColor,
		Season:    body.Season,
	}
	h.serve(w, r, types.KindCropSuggestions, &rc, func(ctx context.Context) (any, error) {
		return h.svc.CropSuggestions(ctx, rc)
	})
}

// CropDetails handles POST /crop-details
func (h *Handler) CropDetails(w http.ResponseWriter, r *http.Request) {
	var body detailsRequest
	if !h.decode(w, r, &body) {
		return
	}
	rc := types.RequestContext{
		Language: body.Language,
		Location: body.Location,
		LatLng:   body.LatLng,
		Query:    body.Query,
	}
	h.serve(w, r, types.KindCropDetails, &rc, func(ctx context.Context) (any, error) {
		return h.svc.CropDetails(ctx, rc)
	})
}

// PriceTrends handles POST /price-trends
func (h *Handler) PriceTrends(w http.ResponseWriter, r *http.Request) {
	var body priceTrendsRequest
	if !h.decode(w, r, &body) {
		return
	}
	rc := types.RequestContext{
		Language: body.Language,
		Location: body.Location,
		Query:    body.CropName,
	}
	h.serve(w, r, types.KindPriceTrends, &rc, func(ctx context.Context) (any, error) {
		return h.svc.PriceTrends(ctx, rc)
	})
}

// GenerateLogo handles POST /generate-logo. The body is ignored.
func (h *Handler) GenerateLogo(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, types.KindLogo, &types.RequestContext{}, func(ctx context.Context) (string, bool, error) {
		return h.svc.GenerateLogo(ctx)
	})
}

// GenerateCropImage handles POST /generate-crop-image
func (h *Handler) GenerateCropImage(w http.ResponseWriter, r *http.Request) {
	var body cropImageRequest
	if !h.decode(w, r, &body) {
		return
	}
	rc := types.RequestContext{Query: body.Query, AspectRatio: body.AspectRatio}
	h.serveImage(w, r, types.KindCropImage, &rc, func(ctx context.Context) (string, bool, error) {
		return h.svc.GenerateCropImage(ctx, rc.Query, rc.AspectRatio)
	})
}

// decode reads a JSON body. An empty body decodes as the zero value.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	reqID := RequestIDFromContext(r.Context())
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return false
	}
	if len(body) > maxBodyBytes {
		httputil.WriteBadRequestError(w, reqID, "Request body too large")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dest); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// screen runs the filter chain and writes a 400 when a filter blocks.
func (h *Handler) screen(w http.ResponseWriter, r *http.Request, kind types.RequestKind, rc *types.RequestContext) bool {
	if h.filterChain == nil {
		return true
	}
	reqID := RequestIDFromContext(r.Context())
	results, blocked := h.filterChain.Run(r.Context(), kind, rc)
	if blocked != nil {
		slog.Warn("request blocked by filter",
			"request_id", reqID,
			"kind", kind,
			"filter", blocked.FilterName,
			"detections", blocked.Detections,
			"score", blocked.Score,
		)
		if h.metrics != nil {
			h.metrics.RecordFilterAction(blocked.FilterName, string(blocked.Action))
		}
		h.record(kind, http.StatusBadRequest, time.Time{})
		httputil.WriteBadRequestError(w, reqID, blocked.Message)
		return false
	}
	for _, fr := range results {
		if fr.Action == filter.ActionFlag && h.metrics != nil {
			h.metrics.RecordFilterAction(fr.FilterName, "flag")
		}
	}
	return true
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, kind types.RequestKind, rc *types.RequestContext, call func(context.Context) (any, error)) {
	if !h.screen(w, r, kind, rc) {
		return
	}
	reqID := RequestIDFromContext(r.Context())
	start := time.Now()

	result, err := call(r.Context())
	if err != nil {
		h.fail(w, reqID, kind, start, err)
		return
	}

	h.complete(reqID, kind, start)
	httputil.WriteJSON(w, result)
}

func (h *Handler) serveImage(w http.ResponseWriter, r *http.Request, kind types.RequestKind, rc *types.RequestContext, call func(context.Context) (string, bool, error)) {
	if !h.screen(w, r, kind, rc) {
		return
	}
	reqID := RequestIDFromContext(r.Context())
	start := time.Now()

	url, ok, err := call(r.Context())
	if err != nil {
		h.fail(w, reqID, kind, start, err)
		return
	}
	if !ok {
		h.record(kind, http.StatusNotFound, start)
		httputil.WriteNotFoundError(w, reqID, "No image generated")
		return
	}

	h.complete(reqID, kind, start)
	httputil.WriteJSON(w, types.ImageResponse{ImageURL: url})
}

// fail collapses every gateway error into a 500 carrying the error text.
func (h *Handler) fail(w http.ResponseWriter, reqID string, kind types.RequestKind, start time.Time, err error) {
	attrs := []any{
		"request_id", reqID,
		"kind", kind,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err,
	}
	var malformed *gemini.MalformedResponseError
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		slog.Error("AI service not configured", attrs...)
	case errors.As(err, &malformed):
		slog.Error("AI service returned malformed response", append(attrs, "field", malformed.Field)...)
	default:
		slog.Error("AI request failed", attrs...)
	}
	h.record(kind, http.StatusInternalServerError, start)
	httputil.WriteInternalError(w, reqID, err.Error())
}

func (h *Handler) complete(reqID string, kind types.RequestKind, start time.Time) {
	duration := time.Since(start)
	slog.Info("request completed",
		"request_id", reqID,
		"kind", kind,
		"duration_ms", duration.Milliseconds(),
		"status_code", http.StatusOK,
	)
	h.record(kind, http.StatusOK, start)
}

func (h *Handler) record(kind types.RequestKind, status int, start time.Time) {
	if h.metrics == nil {
		return
	}
	var ms float64
	if !start.IsZero() {
		ms = float64(time.Since(start).Milliseconds())
	}
	h.metrics.RecordRequest(telemetry.RequestLabels{
		Kind:       string(kind),
		Status:     strconv.Itoa(status),
		DurationMs: ms,
	})
}
