// Package screen implements the option screening pipeline: candidate
// selection, ROI computation and the per-ticker result aggregation.
package screen

import (
	"math"

	"github.com/newthinker/premia/internal/core"
)

// round2 rounds to 2 decimal places
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// TargetStrike computes the moneyness target for a strategy.
// Puts target below the current price, calls above.
func TargetStrike(price float64, strategy core.Strategy, moneynessPct float64) float64 {
	if strategy == core.StrategyCoveredCall {
		return round2(price * (1 + moneynessPct/100))
	}
	return round2(price * (1 - moneynessPct/100))
}

// SelectCandidate picks the single contract for one ticker+expiration:
// for puts the highest strike at or below the target, for calls the
// lowest strike at or above it. The second return is false when no
// contract satisfies the moneyness constraint.
func SelectCandidate(price float64, chain *core.Chain, strategy core.Strategy, moneynessPct float64) (core.OptionQuote, bool) {
	if chain == nil || price <= 0 {
		return core.OptionQuote{}, false
	}

	target := TargetStrike(price, strategy, moneynessPct)

	if strategy == core.StrategyCoveredCall {
		best := core.OptionQuote{}
		found := false
		for _, q := range chain.Calls {
			if q.Strike < target {
				continue
			}
			if !found || q.Strike < best.Strike {
				best = q
				found = true
			}
		}
		return best, found
	}

	best := core.OptionQuote{}
	found := false
	for _, q := range chain.Puts {
		if q.Strike > target {
			continue
		}
		if !found || q.Strike > best.Strike {
			best = q
			found = true
		}
	}
	return best, found
}
