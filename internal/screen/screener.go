package screen

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newthinker/premia/internal/core"
	"github.com/newthinker/premia/internal/gateway"
	"github.com/newthinker/premia/internal/metrics"
	"go.uber.org/zap"
)

// Screener fans a scan request out across tickers and expirations and
// collects the ranked result set. Each ticker is processed on its own
// goroutine with a local row buffer; failures for one ticker or one
// expiration never abort the batch.
type Screener struct {
	gateway gateway.Gateway
	logger  *zap.Logger
	cache   *Cache
	metrics *metrics.Registry
	now     func() time.Time
}

// New creates a screener backed by the given gateway
func New(gw gateway.Gateway, logger ...*zap.Logger) *Screener {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Screener{
		gateway: gw,
		logger:  l,
		cache:   NewCache(),
		now:     time.Now,
	}
}

// SetMetrics attaches a metrics registry
func (s *Screener) SetMetrics(m *metrics.Registry) {
	s.metrics = m
}

// SetClock overrides the reference "today" used for days-to-expiration
func (s *Screener) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Run executes one scan. Identical input tuples are served from the
// in-process cache without re-fetching. The returned rows are sorted by
// annualized ROI descending, ties keeping encounter order; an empty
// result is the valid "no matches" outcome.
func (s *Screener) Run(ctx context.Context, req core.ScanRequest) ([]core.ResultRow, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if rows, ok := s.cache.Get(req); ok {
		s.logger.Debug("scan served from cache", zap.Int("rows", len(rows)))
		return rows, nil
	}

	start := s.now()

	// Per-ticker buffers keep encounter order deterministic
	buffers := make([][]core.ResultRow, len(req.Tickers))
	var wg sync.WaitGroup
	for i, ticker := range req.Tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			buffers[i] = s.scanTicker(ctx, ticker, req)
		}(i, ticker)
	}
	wg.Wait()

	var rows []core.ResultRow
	for _, buf := range buffers {
		rows = append(rows, buf...)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AnnROI > rows[j].AnnROI
	})

	s.cache.Put(req, rows)

	if s.metrics != nil {
		s.metrics.RecordScan(string(req.Strategy), time.Since(start).Seconds(), len(rows))
	}
	s.logger.Info("scan complete",
		zap.String("strategy", string(req.Strategy)),
		zap.Int("tickers", len(req.Tickers)),
		zap.Int("expirations", len(req.Expirations)),
		zap.Int("rows", len(rows)),
	)

	return rows, nil
}

// scanTicker produces the rows for a single ticker. A failed price or
// fundamentals fetch, or a price outside the requested bounds, yields
// zero rows; a failed chain fetch or an empty eligible set skips only
// that expiration.
func (s *Screener) scanTicker(ctx context.Context, ticker string, req core.ScanRequest) []core.ResultRow {
	price, err := s.gateway.FetchPrice(ticker)
	s.recordGateway("price", err)
	if err != nil {
		s.recordSkip(core.ErrDataUnavailable.Code)
		s.logger.Warn("price fetch failed", zap.String("ticker", ticker), zap.Error(err))
		return nil
	}

	if price < req.MinPrice || price > req.MaxPrice {
		s.recordSkip(core.ErrOutOfPriceRange.Code)
		s.logger.Debug("ticker outside price bounds",
			zap.String("ticker", ticker),
			zap.Float64("price", price),
			zap.Float64("min", req.MinPrice),
			zap.Float64("max", req.MaxPrice),
		)
		return nil
	}

	fundamental, err := s.gateway.FetchFundamental(ticker)
	s.recordGateway("fundamental", err)
	if err != nil {
		s.recordSkip(core.ErrDataUnavailable.Code)
		s.logger.Warn("fundamentals fetch failed", zap.String("ticker", ticker), zap.Error(err))
		return nil
	}

	today := s.now()
	var rows []core.ResultRow
	for _, expiration := range req.Expirations {
		select {
		case <-ctx.Done():
			return rows
		default:
		}

		chain, err := s.gateway.FetchChain(ticker, expiration)
		s.recordGateway("chain", err)
		if err != nil {
			s.recordSkip(core.ErrDataUnavailable.Code)
			s.logger.Debug("chain fetch failed",
				zap.String("ticker", ticker),
				zap.Time("expiration", expiration),
				zap.Error(err),
			)
			continue
		}

		quote, ok := SelectCandidate(price, chain, req.Strategy, req.MoneynessPct)
		if !ok {
			s.recordSkip(core.ErrNoCandidate.Code)
			continue
		}

		candidate := core.Candidate{
			Ticker:      ticker,
			Strategy:    req.Strategy,
			Expiration:  expiration,
			Quote:       quote,
			Price:       price,
			Fundamental: fundamental,
		}
		rows = append(rows, buildRow(candidate, today))
	}
	return rows
}

func (s *Screener) recordSkip(reason string) {
	if s.metrics != nil {
		s.metrics.RecordSkip(reason)
	}
}

func (s *Screener) recordGateway(kind string, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordGatewayRequest(s.gateway.Name(), kind, status)
}

// buildRow flattens a candidate and its computed metrics into a ResultRow
func buildRow(c core.Candidate, today time.Time) core.ResultRow {
	premium := Premium(c.Quote)
	days := DaysToExpiration(c.Expiration, today)
	absROI, annROI := ROI(premium, c.Quote.Strike, days)

	if c.Fundamental == nil {
		c.Fundamental = &core.Fundamental{Ticker: c.Ticker}
	}

	epsTrend := "Miss"
	if c.Fundamental.EarningsQuarterlyGrowth > 0 {
		epsTrend = "Beat"
	}

	return core.ResultRow{
		Ticker:         c.Ticker,
		Strategy:       c.Strategy,
		CurrentPrice:   c.Price,
		Strike:         c.Quote.Strike,
		AnalystTarget:  c.Fundamental.TargetMeanPrice,
		Premium:        premium,
		DaysToExp:      days,
		AbsROI:         absROI,
		AnnROI:         annROI,
		DividendYield:  c.Fundamental.DividendYield,
		NextEarnings:   c.Fundamental.NextEarnings,
		Recommendation: c.Fundamental.RecommendationKey,
		TrailingEPS:    c.Fundamental.TrailingEPS,
		EPSTrend:       epsTrend,
		OverallScore:   c.Fundamental.RecommendationMean,
		Expiration:     c.Expiration,
		Sector:         c.Fundamental.Sector,
		Industry:       c.Fundamental.Industry,
	}
}
