// Package advisor produces an optional LLM commentary on scan results.
// It sits outside the screening critical path; a failed or disabled
// advisor never affects the result set.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/newthinker/premia/internal/config"
	"github.com/newthinker/premia/internal/core"
	"github.com/newthinker/premia/internal/export"
	"github.com/newthinker/premia/internal/llm"
	"github.com/newthinker/premia/internal/llm/claude"
	"github.com/newthinker/premia/internal/llm/openai"
)

const systemPrompt = `You are an options income analyst. You receive a ranked table of
options-selling candidates (cash-secured puts or covered calls) in CSV form.
Comment briefly on premium quality, assignment risk near earnings dates, and
concentration across sectors. Do not give personalized financial advice.`

// Advisor wraps an LLM provider with result digesting
type Advisor struct {
	provider llm.Provider
	topRows  int
}

// New creates an advisor from configuration
func New(cfg config.AdvisorConfig) (*Advisor, error) {
	var (
		provider llm.Provider
		err      error
	)
	switch cfg.Provider {
	case "claude":
		provider, err = claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		provider, err = openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unknown advisor provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	topRows := cfg.TopRows
	if topRows <= 0 {
		topRows = 10
	}
	return &Advisor{provider: provider, topRows: topRows}, nil
}

// NewWithProvider creates an advisor around an existing provider
func NewWithProvider(provider llm.Provider, topRows int) *Advisor {
	if topRows <= 0 {
		topRows = 10
	}
	return &Advisor{provider: provider, topRows: topRows}
}

// Review asks the provider to comment on the top-ranked rows
func (a *Advisor) Review(ctx context.Context, req core.ScanRequest, rows []core.ResultRow) (string, error) {
	if len(rows) == 0 {
		return "No candidates matched the requested filters.", nil
	}

	top := rows
	if len(top) > a.topRows {
		top = top[:a.topRows]
	}
	table, err := export.MarshalCSV(top)
	if err != nil {
		return "", core.WrapError(core.ErrAdvisorFailed, err)
	}

	prompt := fmt.Sprintf(
		"Strategy: %s, moneyness %.0f%%, price bounds [%.2f, %.2f].\nTop %d candidates by annualized ROI:\n\n%s",
		req.Strategy.Label(), req.MoneynessPct, req.MinPrice, req.MaxPrice,
		len(top), string(table),
	)

	resp, err := a.provider.Chat(ctx, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:    1024,
	})
	if err != nil {
		return "", core.WrapError(core.ErrAdvisorFailed, err)
	}
	return strings.TrimSpace(resp.Content), nil
}
