package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Strategy represents an options-selling strategy
type Strategy string

const (
	StrategyCashSecuredPut Strategy = "cash_secured_put"
	StrategyCoveredCall    Strategy = "covered_call"
)

// Label returns the display name for the strategy
func (s Strategy) Label() string {
	switch s {
	case StrategyCashSecuredPut:
		return "Cash Secured Put"
	case StrategyCoveredCall:
		return "Covered Call"
	}
	return string(s)
}

// IsValid checks if the strategy is a known value
func (s Strategy) IsValid() bool {
	return s == StrategyCashSecuredPut || s == StrategyCoveredCall
}

// ParseStrategy accepts both config-style and display-style names
func ParseStrategy(v string) (Strategy, error) {
	norm := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.TrimSpace(v))
	switch strings.ToLower(norm) {
	case "cash_secured_put", "csp", "put":
		return StrategyCashSecuredPut, nil
	case "covered_call", "cc", "call":
		return StrategyCoveredCall, nil
	}
	return "", fmt.Errorf("unknown strategy: %q", v)
}

// OptionQuote is one contract snapshot on one side of the chain.
// Bid and ask may be absent (zero).
type OptionQuote struct {
	Strike    float64
	Bid       float64
	Ask       float64
	LastPrice float64
}

// Chain holds one ticker+expiration option chain, puts and calls disjoint
type Chain struct {
	Ticker     string
	Expiration time.Time
	Puts       []OptionQuote // strike ascending
	Calls      []OptionQuote // strike ascending
}

// Fundamental holds descriptive data for a ticker
type Fundamental struct {
	Ticker                  string
	TargetMeanPrice         float64
	DividendYield           float64 // percent
	TrailingEPS             float64
	EarningsQuarterlyGrowth float64
	RecommendationKey       string
	RecommendationMean      float64
	NextEarnings            string
	Sector                  string
	Industry                string
}

// Candidate is the contract selected for one ticker+expiration+strategy
type Candidate struct {
	Ticker      string
	Strategy    Strategy
	Expiration  time.Time
	Quote       OptionQuote
	Price       float64 // underlying price at selection time
	Fundamental *Fundamental
}

// ResultRow is a display-ready record, one per qualifying contract.
// Field order matches the export column order.
type ResultRow struct {
	Ticker         string
	Strategy       Strategy
	CurrentPrice   float64
	Strike         float64
	AnalystTarget  float64
	Premium        float64
	DaysToExp      int
	AbsROI         float64 // percent
	AnnROI         float64 // percent
	DividendYield  float64 // percent
	NextEarnings   string
	Recommendation string
	TrailingEPS    float64
	EPSTrend       string // "Beat" or "Miss"
	OverallScore   float64
	Expiration     time.Time
	Sector         string
	Industry       string
}

// MoneynessLevels is the enumerated option set for moneyness percentage
var MoneynessLevels = []float64{1, 2, 3, 4, 5, 10, 15, 20, 30}

// ValidMoneyness reports whether pct is one of the allowed levels
func ValidMoneyness(pct float64) bool {
	for _, m := range MoneynessLevels {
		if pct == m {
			return true
		}
	}
	return false
}

// ScanRequest describes one analysis run. Constructed once from user
// input and consumed read-only by the screener.
type ScanRequest struct {
	Strategy     Strategy
	MoneynessPct float64
	MinPrice     float64
	MaxPrice     float64
	Tickers      []string
	Expirations  []time.Time
}

// Normalize uppercases, deduplicates and sorts the ticker set
func (r *ScanRequest) Normalize() {
	seen := make(map[string]struct{}, len(r.Tickers))
	tickers := make([]string, 0, len(r.Tickers))
	for _, t := range r.Tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	r.Tickers = tickers
}

// Validate checks request preconditions eagerly
func (r ScanRequest) Validate() error {
	if !r.Strategy.IsValid() {
		return WrapError(ErrRequestInvalid, fmt.Errorf("unknown strategy: %q", r.Strategy))
	}
	if !ValidMoneyness(r.MoneynessPct) {
		return WrapError(ErrRequestInvalid, fmt.Errorf("moneyness %.0f%% not in %v", r.MoneynessPct, MoneynessLevels))
	}
	if r.MinPrice < 0 {
		return WrapError(ErrRequestInvalid, fmt.Errorf("min price cannot be negative, got %.2f", r.MinPrice))
	}
	if r.MinPrice > r.MaxPrice {
		return WrapError(ErrRequestInvalid, fmt.Errorf("min price %.2f above max price %.2f", r.MinPrice, r.MaxPrice))
	}
	if len(r.Tickers) == 0 {
		return WrapError(ErrRequestInvalid, fmt.Errorf("ticker set is empty"))
	}
	if len(r.Expirations) == 0 {
		return WrapError(ErrRequestInvalid, fmt.Errorf("expiration set is empty"))
	}
	return nil
}
