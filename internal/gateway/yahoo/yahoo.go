// Package yahoo implements the market data gateway against Yahoo Finance.
package yahoo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"time"

	"github.com/newthinker/premia/internal/core"
	"github.com/newthinker/premia/internal/gateway"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// validTicker matches plain US symbols like AAPL, MSFT, BRK-B
var validTicker = regexp.MustCompile(`^[A-Za-z0-9]{1,10}(-[A-Za-z])?$`)

// validateTicker checks if a ticker has valid format
func validateTicker(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("ticker cannot be empty")
	}
	if !validTicker.MatchString(ticker) {
		return fmt.Errorf("invalid ticker format: %s", ticker)
	}
	return nil
}

// Yahoo implements the Yahoo Finance gateway
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// New creates a new Yahoo gateway
func New() *Yahoo {
	return &Yahoo{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

func (y *Yahoo) Init(cfg gateway.Config) error {
	if cfg.BaseURL != "" {
		y.baseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		y.client.Timeout = cfg.Timeout
	}
	return nil
}

// FetchPrice returns the latest close from a short trailing history,
// falling back to the regular market price when the series is empty.
func (y *Yahoo) FetchPrice(ticker string) (float64, error) {
	if err := validateTicker(ticker); err != nil {
		return 0, core.WrapError(core.ErrDataUnavailable, err)
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", y.baseURL, url.PathEscape(ticker))

	var result chartResponse
	if err := y.getJSON(u, &result); err != nil {
		return 0, core.WrapError(core.ErrDataUnavailable, err)
	}
	if result.Chart.Error != nil {
		return 0, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return 0, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no chart data for ticker: %s", ticker))
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) > 0 {
		closes := r.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil && *closes[i] > 0 {
				return *closes[i], nil
			}
		}
	}
	if r.Meta.RegularMarketPrice > 0 {
		return r.Meta.RegularMarketPrice, nil
	}
	return 0, core.WrapError(core.ErrDataUnavailable,
		fmt.Errorf("no usable price for ticker: %s", ticker))
}

// FetchChain fetches the option chain for one expiration. Both sides are
// returned strike ascending.
func (y *Yahoo) FetchChain(ticker string, expiration time.Time) (*core.Chain, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, err)
	}
	u := fmt.Sprintf("%s/v7/finance/options/%s?date=%d", y.baseURL, url.PathEscape(ticker), expiration.Unix())

	var result optionsResponse
	if err := y.getJSON(u, &result); err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, err)
	}
	if result.OptionChain.Error != nil {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("yahoo error: %s", result.OptionChain.Error.Description))
	}
	if len(result.OptionChain.Result) == 0 || len(result.OptionChain.Result[0].Options) == 0 {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no option chain for %s at %s", ticker, expiration.Format("2006-01-02")))
	}

	o := result.OptionChain.Result[0].Options[0]
	chain := &core.Chain{
		Ticker:     ticker,
		Expiration: expiration,
		Puts:       toQuotes(o.Puts),
		Calls:      toQuotes(o.Calls),
	}
	return chain, nil
}

// FetchFundamental fetches descriptive data from the quoteSummary endpoint
func (y *Yahoo) FetchFundamental(ticker string) (*core.Fundamental, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, err)
	}
	modules := "financialData,summaryDetail,defaultKeyStatistics,calendarEvents,assetProfile"
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", y.baseURL, url.PathEscape(ticker), modules)

	var result summaryResponse
	if err := y.getJSON(u, &result); err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable, err)
	}
	if result.QuoteSummary.Error != nil {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("yahoo error: %s", result.QuoteSummary.Error.Description))
	}
	if len(result.QuoteSummary.Result) == 0 {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no fundamentals for ticker: %s", ticker))
	}

	r := result.QuoteSummary.Result[0]
	f := &core.Fundamental{
		Ticker:                  ticker,
		TargetMeanPrice:         r.FinancialData.TargetMeanPrice.Raw,
		DividendYield:           r.SummaryDetail.DividendYield.Raw * 100,
		TrailingEPS:             r.DefaultKeyStatistics.TrailingEps.Raw,
		EarningsQuarterlyGrowth: r.DefaultKeyStatistics.EarningsQuarterlyGrowth.Raw,
		RecommendationKey:       r.FinancialData.RecommendationKey,
		RecommendationMean:      r.FinancialData.RecommendationMean.Raw,
		Sector:                  r.AssetProfile.Sector,
		Industry:                r.AssetProfile.Industry,
	}
	if len(r.CalendarEvents.Earnings.EarningsDate) > 0 {
		ts := r.CalendarEvents.Earnings.EarningsDate[0].Raw
		if ts > 0 {
			f.NextEarnings = time.Unix(int64(ts), 0).UTC().Format("2006-01-02")
		}
	}
	return f, nil
}

func (y *Yahoo) getJSON(u string, out any) error {
	resp, err := y.client.Get(u)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func toQuotes(contracts []optionContract) []core.OptionQuote {
	quotes := make([]core.OptionQuote, 0, len(contracts))
	for _, c := range contracts {
		if c.Strike <= 0 {
			continue
		}
		quotes = append(quotes, core.OptionQuote{
			Strike:    c.Strike,
			Bid:       c.Bid,
			Ask:       c.Ask,
			LastPrice: c.LastPrice,
		})
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Strike < quotes[j].Strike })
	return quotes
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			Options []struct {
				Calls []optionContract `json:"calls"`
				Puts  []optionContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"optionChain"`
}

type optionContract struct {
	Strike    float64 `json:"strike"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	LastPrice float64 `json:"lastPrice"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData struct {
				TargetMeanPrice    rawValue `json:"targetMeanPrice"`
				RecommendationMean rawValue `json:"recommendationMean"`
				RecommendationKey  string   `json:"recommendationKey"`
			} `json:"financialData"`
			SummaryDetail struct {
				DividendYield rawValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEps             rawValue `json:"trailingEps"`
				EarningsQuarterlyGrowth rawValue `json:"earningsQuarterlyGrowth"`
			} `json:"defaultKeyStatistics"`
			CalendarEvents struct {
				Earnings struct {
					EarningsDate []rawValue `json:"earningsDate"`
				} `json:"earnings"`
			} `json:"calendarEvents"`
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

type rawValue struct {
	Raw float64 `json:"raw"`
}
