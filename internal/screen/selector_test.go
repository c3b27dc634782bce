package screen

import (
	"testing"

	"github.com/newthinker/premia/internal/core"
)

func TestTargetStrike(t *testing.T) {
	tests := []struct {
		price    float64
		strategy core.Strategy
		pct      float64
		expected float64
	}{
		{100, core.StrategyCashSecuredPut, 5, 95.00},
		{100, core.StrategyCoveredCall, 5, 105.00},
		{123.45, core.StrategyCashSecuredPut, 10, 111.11}, // 111.105 rounds up
		{50, core.StrategyCashSecuredPut, 1, 49.50},
		{50, core.StrategyCoveredCall, 30, 65.00},
	}

	for _, tc := range tests {
		got := TargetStrike(tc.price, tc.strategy, tc.pct)
		if got != tc.expected {
			t.Errorf("TargetStrike(%.2f, %s, %.0f) = %.4f, want %.2f",
				tc.price, tc.strategy, tc.pct, got, tc.expected)
		}
	}
}

func putChain(strikes ...float64) *core.Chain {
	c := &core.Chain{Ticker: "XYZ"}
	for _, s := range strikes {
		c.Puts = append(c.Puts, core.OptionQuote{Strike: s, Bid: 1, Ask: 1.2, LastPrice: 1.1})
	}
	return c
}

func callChain(strikes ...float64) *core.Chain {
	c := &core.Chain{Ticker: "XYZ"}
	for _, s := range strikes {
		c.Calls = append(c.Calls, core.OptionQuote{Strike: s, Bid: 1, Ask: 1.2, LastPrice: 1.1})
	}
	return c
}

func TestSelectCandidate_PutPicksHighestEligible(t *testing.T) {
	// target = 95.00; eligible strikes are 85, 90, 95; pick 95
	chain := putChain(80, 85, 90, 95, 100, 105)

	quote, ok := SelectCandidate(100, chain, core.StrategyCashSecuredPut, 5)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if quote.Strike != 95 {
		t.Errorf("strike = %.2f, want 95", quote.Strike)
	}
}

func TestSelectCandidate_CallPicksLowestEligible(t *testing.T) {
	// target = 105.00; eligible strikes are 105, 110, 120; pick 105
	chain := callChain(95, 100, 105, 110, 120)

	quote, ok := SelectCandidate(100, chain, core.StrategyCoveredCall, 5)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if quote.Strike != 105 {
		t.Errorf("strike = %.2f, want 105", quote.Strike)
	}
}

func TestSelectCandidate_StrikeAtTarget(t *testing.T) {
	// At-target strikes are eligible on both sides
	put, ok := SelectCandidate(100, putChain(95), core.StrategyCashSecuredPut, 5)
	if !ok || put.Strike != 95 {
		t.Errorf("expected put at strike 95, got %+v ok=%v", put, ok)
	}

	call, ok := SelectCandidate(100, callChain(105), core.StrategyCoveredCall, 5)
	if !ok || call.Strike != 105 {
		t.Errorf("expected call at strike 105, got %+v ok=%v", call, ok)
	}
}

func TestSelectCandidate_NoneEligible(t *testing.T) {
	// All put strikes above the 95 target
	if _, ok := SelectCandidate(100, putChain(96, 100, 110), core.StrategyCashSecuredPut, 5); ok {
		t.Error("expected no put candidate")
	}
	// All call strikes below the 105 target
	if _, ok := SelectCandidate(100, callChain(90, 100, 104), core.StrategyCoveredCall, 5); ok {
		t.Error("expected no call candidate")
	}
	// Empty chain
	if _, ok := SelectCandidate(100, &core.Chain{}, core.StrategyCashSecuredPut, 5); ok {
		t.Error("expected no candidate from empty chain")
	}
	if _, ok := SelectCandidate(100, nil, core.StrategyCashSecuredPut, 5); ok {
		t.Error("expected no candidate from nil chain")
	}
}

func TestSelectCandidate_UnsortedChain(t *testing.T) {
	// Selection does not depend on input ordering
	chain := putChain(95, 80, 90, 85)

	quote, ok := SelectCandidate(100, chain, core.StrategyCashSecuredPut, 5)
	if !ok || quote.Strike != 95 {
		t.Errorf("expected strike 95 from unsorted chain, got %+v ok=%v", quote, ok)
	}
}

func TestSelectCandidate_WrongSideIgnored(t *testing.T) {
	chain := &core.Chain{
		Puts:  []core.OptionQuote{{Strike: 90}},
		Calls: []core.OptionQuote{{Strike: 94}}, // below put target, wrong side
	}
	quote, ok := SelectCandidate(100, chain, core.StrategyCashSecuredPut, 5)
	if !ok || quote.Strike != 90 {
		t.Errorf("expected the put at 90, got %+v ok=%v", quote, ok)
	}
}
