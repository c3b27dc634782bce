// Package gateway defines the market data access contract for the screener.
package gateway

import (
	"time"

	"github.com/newthinker/premia/internal/core"
)

// Config holds gateway configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Extra   map[string]any
}

// Gateway defines the interface for market data providers.
// Implementations return core.ErrDataUnavailable wraps when a ticker or
// ticker+expiration cannot be served; callers isolate those failures.
type Gateway interface {
	// Metadata
	Name() string

	// Lifecycle
	Init(cfg Config) error

	// Data fetching
	FetchPrice(ticker string) (float64, error)
	FetchChain(ticker string, expiration time.Time) (*core.Chain, error)
	FetchFundamental(ticker string) (*core.Fundamental, error)
}
