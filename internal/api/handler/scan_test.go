// internal/api/handler/scan_test.go
package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/premia/internal/api/job"
	"github.com/newthinker/premia/internal/api/response"
	"github.com/newthinker/premia/internal/config"
	"github.com/newthinker/premia/internal/core"
	"github.com/newthinker/premia/internal/gateway"
	"github.com/newthinker/premia/internal/screen"
)

// MockGateway serves a fixed price and a single-strike chain.
type MockGateway struct{}

func (m *MockGateway) Name() string                  { return "mock" }
func (m *MockGateway) Init(cfg gateway.Config) error { return nil }
func (m *MockGateway) FetchPrice(ticker string) (float64, error) {
	return 100, nil
}
func (m *MockGateway) FetchChain(ticker string, expiration time.Time) (*core.Chain, error) {
	return &core.Chain{
		Ticker:     ticker,
		Expiration: expiration,
		Puts: []core.OptionQuote{
			{Strike: 95, Bid: 2.00, Ask: 2.20},
		},
		Calls: []core.OptionQuote{
			{Strike: 105, Bid: 1.50, Ask: 1.70},
		},
	}, nil
}
func (m *MockGateway) FetchFundamental(ticker string) (*core.Fundamental, error) {
	return &core.Fundamental{Ticker: ticker}, nil
}

func defaults() config.ScreenConfig {
	return config.ScreenConfig{
		Strategy:        "cash_secured_put",
		MoneynessPct:    5,
		MinPrice:        50,
		MaxPrice:        500,
		Tickers:         []string{"AAPL"},
		ExpirationCount: 2,
	}
}

func newScanHandler() (*ScanHandler, *job.Store) {
	jobStore := job.NewStore(100, time.Hour)
	screener := screen.New(&MockGateway{})
	return NewScanHandler(jobStore, screener, defaults()), jobStore
}

func waitForJob(t *testing.T, store *job.Store, id string) *job.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		j, err := store.Get(id)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if j.Status == job.StatusComplete || j.Status == job.StatusFailed {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestScanHandler_Create(t *testing.T) {
	h, store := newScanHandler()

	body := bytes.NewBufferString(`{"tickers": ["AAPL", "MSFT"]}`)
	req := httptest.NewRequest("POST", "/api/scan", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	data := resp.Data.(map[string]any)
	jobID, _ := data["job_id"].(string)
	if jobID == "" {
		t.Fatal("expected job_id in response")
	}
	if data["status"] != "pending" {
		t.Errorf("expected pending status, got %v", data["status"])
	}

	j := waitForJob(t, store, jobID)
	if j.Status != job.StatusComplete {
		t.Fatalf("expected complete job, got %s (err=%v)", j.Status, j.Error)
	}
	result, ok := j.Result.(ScanResult)
	if !ok {
		t.Fatalf("unexpected result type %T", j.Result)
	}
	if len(result.Rows) != 4 { // 2 tickers x 2 expirations
		t.Errorf("expected 4 rows, got %d", len(result.Rows))
	}
	if len(result.Chart) != 2 {
		t.Errorf("expected 2 chart series, got %d", len(result.Chart))
	}
}

func TestScanHandler_Create_InvalidBody(t *testing.T) {
	h, _ := newScanHandler()

	req := httptest.NewRequest("POST", "/api/scan", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScanHandler_Create_InvalidMoneyness(t *testing.T) {
	h, _ := newScanHandler()

	body := bytes.NewBufferString(`{"moneyness_pct": 7}`)
	req := httptest.NewRequest("POST", "/api/scan", body)
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScanHandler_Create_UnknownStrategy(t *testing.T) {
	h, _ := newScanHandler()

	body := bytes.NewBufferString(`{"strategy": "iron_condor"}`)
	req := httptest.NewRequest("POST", "/api/scan", body)
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScanHandler_GetStatus_NotFound(t *testing.T) {
	h, _ := newScanHandler()

	req := httptest.NewRequest("GET", "/api/scan/missing", nil)
	w := httptest.NewRecorder()

	h.GetStatus(w, req, "missing")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestScanHandler_Route(t *testing.T) {
	h, _ := newScanHandler()

	// DELETE is not supported
	req := httptest.NewRequest("DELETE", "/api/scan", nil)
	w := httptest.NewRecorder()
	h.Route(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}

	// GET on an unknown job routes to GetStatus
	req = httptest.NewRequest("GET", "/api/scan/nope", nil)
	w = httptest.NewRecorder()
	h.Route(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestScanHandler_GetChart(t *testing.T) {
	h, store := newScanHandler()

	body := bytes.NewBufferString(`{"tickers": ["AAPL"]}`)
	req := httptest.NewRequest("POST", "/api/scan", body)
	w := httptest.NewRecorder()
	h.Create(w, req)

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	jobID := resp.Data.(map[string]any)["job_id"].(string)
	waitForJob(t, store, jobID)

	req = httptest.NewRequest("GET", "/api/chart/"+jobID, nil)
	w = httptest.NewRecorder()
	h.GetChart(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var chartResp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &chartResp)
	data := chartResp.Data.(map[string]any)
	series := data["chart"].([]any)
	if len(series) != 1 {
		t.Errorf("expected 1 chart series, got %d", len(series))
	}

	// Unknown job is a 404
	req = httptest.NewRequest("GET", "/api/chart/missing", nil)
	w = httptest.NewRecorder()
	h.GetChart(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestScanHandler_DefaultsApplied(t *testing.T) {
	h, store := newScanHandler()

	// Empty body falls back to configured defaults
	req := httptest.NewRequest("POST", "/api/scan", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}

	var resp response.SuccessResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	data := resp.Data.(map[string]any)
	jobID, _ := data["job_id"].(string)

	j := waitForJob(t, store, jobID)
	if j.Status != job.StatusComplete {
		t.Fatalf("expected complete job, got %s", j.Status)
	}
	result := j.Result.(ScanResult)
	if len(result.Rows) != 2 { // 1 default ticker x 2 expirations
		t.Errorf("expected 2 rows, got %d", len(result.Rows))
	}
	for _, row := range result.Rows {
		if row.Ticker != "AAPL" {
			t.Errorf("expected default ticker AAPL, got %s", row.Ticker)
		}
	}
}
