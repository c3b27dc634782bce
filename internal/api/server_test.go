// internal/api/server_test.go
package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/premia/internal/config"
	"github.com/newthinker/premia/internal/core"
	"github.com/newthinker/premia/internal/gateway"
	"github.com/newthinker/premia/internal/metrics"
	"github.com/newthinker/premia/internal/screen"
)

type nopGateway struct{}

func (nopGateway) Name() string                  { return "nop" }
func (nopGateway) Init(cfg gateway.Config) error { return nil }
func (nopGateway) FetchPrice(ticker string) (float64, error) {
	return 0, core.ErrDataUnavailable
}
func (nopGateway) FetchChain(ticker string, expiration time.Time) (*core.Chain, error) {
	return nil, core.ErrDataUnavailable
}
func (nopGateway) FetchFundamental(ticker string) (*core.Fundamental, error) {
	return nil, core.ErrDataUnavailable
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Defaults()
	screener := screen.New(nopGateway{})
	registry := metrics.NewRegistry()
	return NewServer(cfg, screener, registry, zap.NewNop())
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestServer_Expirations(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/expirations?count=2", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestServer_ScanBadMethod(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/scan", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
