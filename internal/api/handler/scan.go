// internal/api/handler/scan.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/newthinker/premia/internal/api/job"
	"github.com/newthinker/premia/internal/api/response"
	"github.com/newthinker/premia/internal/config"
	"github.com/newthinker/premia/internal/core"
	"github.com/newthinker/premia/internal/expiry"
	"github.com/newthinker/premia/internal/export"
	"github.com/newthinker/premia/internal/metrics"
	"github.com/newthinker/premia/internal/screen"
)

const scanTimeout = 5 * time.Minute

// ScanRequest is the request body for starting a scan.
type ScanRequest struct {
	Strategy        string   `json:"strategy"`
	MoneynessPct    *float64 `json:"moneyness_pct,omitempty"`
	MinPrice        *float64 `json:"min_price,omitempty"`
	MaxPrice        *float64 `json:"max_price,omitempty"`
	Tickers         []string `json:"tickers,omitempty"`
	ExpirationCount int      `json:"expiration_count,omitempty"`
}

// ScanResult is the payload stored on a completed scan job.
type ScanResult struct {
	Rows  []core.ResultRow `json:"rows"`
	Chart []export.Series  `json:"chart"`
}

// ScanHandler handles scan API requests.
type ScanHandler struct {
	jobStore *job.Store
	screener *screen.Screener
	defaults config.ScreenConfig
	metrics  *metrics.Registry
	active   atomic.Int64
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(jobStore *job.Store, screener *screen.Screener, defaults config.ScreenConfig) *ScanHandler {
	return &ScanHandler{
		jobStore: jobStore,
		screener: screener,
		defaults: defaults,
	}
}

// SetMetrics attaches a metrics registry
func (h *ScanHandler) SetMetrics(m *metrics.Registry) {
	h.metrics = m
}

// Create starts a new scan job.
func (h *ScanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrRequestInvalid, err))
		return
	}

	req := h.buildRequest(body)
	req.Normalize()
	if err := req.Validate(); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	j := h.jobStore.Create("scan")

	// Copy values before starting goroutine to avoid race
	jobID := j.ID
	status := j.Status

	go h.runScan(jobID, req)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": status,
	})
}

// buildRequest merges the request body with configured defaults.
func (h *ScanHandler) buildRequest(body ScanRequest) core.ScanRequest {
	req := core.ScanRequest{
		Strategy:     core.Strategy(h.defaults.Strategy),
		MoneynessPct: h.defaults.MoneynessPct,
		MinPrice:     h.defaults.MinPrice,
		MaxPrice:     h.defaults.MaxPrice,
		Tickers:      h.defaults.Tickers,
	}
	count := h.defaults.ExpirationCount

	if body.Strategy != "" {
		if s, err := core.ParseStrategy(body.Strategy); err == nil {
			req.Strategy = s
		} else {
			req.Strategy = core.Strategy(body.Strategy)
		}
	}
	if body.MoneynessPct != nil {
		req.MoneynessPct = *body.MoneynessPct
	}
	if body.MinPrice != nil {
		req.MinPrice = *body.MinPrice
	}
	if body.MaxPrice != nil {
		req.MaxPrice = *body.MaxPrice
	}
	if len(body.Tickers) > 0 {
		req.Tickers = body.Tickers
	}
	if body.ExpirationCount > 0 {
		count = body.ExpirationCount
	}
	if count <= 0 {
		count = expiry.DefaultCount
	}
	req.Expirations = expiry.Upcoming(count)
	return req
}

// runScan executes the scan and updates job status.
func (h *ScanHandler) runScan(jobID string, req core.ScanRequest) {
	h.setActive(1)
	defer h.setActive(-1)

	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()
	rows, err := h.screener.Run(ctx, req)

	if err != nil {
		h.jobStore.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = core.WrapError(core.ErrDataUnavailable, err)
		})
		return
	}

	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = ScanResult{
			Rows:  rows,
			Chart: export.ChartSeries(rows),
		}
	})
}

// GetStatus returns the status of a scan job.
func (h *ScanHandler) GetStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	j, err := h.jobStore.Get(jobID)
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}

func (h *ScanHandler) setActive(delta int64) {
	n := h.active.Add(delta)
	if h.metrics != nil {
		h.metrics.SetJobsActive("scan", int(n))
	}
}

// GetChart returns the chart series of a completed scan job.
func (h *ScanHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	jobID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/chart"), "/")
	j, err := h.jobStore.Get(jobID)
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}
	result, ok := j.Result.(ScanResult)
	if !ok {
		response.JSON(w, http.StatusOK, map[string]any{
			"status": j.Status,
			"chart":  []export.Series{},
		})
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"status": j.Status,
		"chart":  result.Chart,
	})
}

// Route dispatches /api/scan and /api/scan/{id} requests.
func (h *ScanHandler) Route(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/scan")
	rest = strings.Trim(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodPost:
		h.Create(w, r)
	case rest != "" && r.Method == http.MethodGet:
		h.GetStatus(w, r, rest)
	default:
		response.Error(w, http.StatusMethodNotAllowed,
			core.WrapError(core.ErrRequestInvalid, nil))
	}
}
