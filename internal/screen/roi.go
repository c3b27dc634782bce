package screen

import (
	"time"

	"github.com/newthinker/premia/internal/core"
)

// Premium estimates the fair premium for a selected contract: the
// bid/ask midpoint when both sides are quoted, otherwise the last trade.
func Premium(q core.OptionQuote) float64 {
	if q.Bid > 0 && q.Ask > 0 {
		return (q.Bid + q.Ask) / 2
	}
	return q.LastPrice
}

// DaysToExpiration returns the whole-day difference between expiration
// and today. Both are truncated to day granularity first.
func DaysToExpiration(expiration, today time.Time) int {
	e := time.Date(expiration.Year(), expiration.Month(), expiration.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(d).Hours() / 24)
}

// ROI computes absolute and annualized return on investment, both as
// plain percentages at full precision. Annualized ROI is zero for
// same-day or past expirations; upstream expiration generation keeps
// those out of the normal path.
func ROI(premium, strike float64, daysToExp int) (absROI, annROI float64) {
	if strike <= 0 {
		return 0, 0
	}
	absROI = premium / strike * 100
	if daysToExp > 0 {
		annROI = absROI / float64(daysToExp) * 365
	}
	return absROI, annROI
}
