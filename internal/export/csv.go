// Package export turns ranked result rows into their outbound shapes:
// the CSV file and the per-ticker chart series.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/newthinker/premia/internal/core"
	"github.com/newthinker/premia/internal/storage/archive"
)

// DefaultFilename is the export filename when none is configured
const DefaultFilename = "options_analysis.csv"

const dateLayout = "2006-01-02"

// Header returns the CSV column names, in result column order
func Header() []string {
	return []string{
		"Ticker", "Strategy", "Current Price", "Strike Price", "Analyst Target",
		"Premium", "Days to Exp", "Abs ROI (%)", "Ann ROI (%)", "Div Yield",
		"Next Earnings", "Recommendation", "EPS (TTM)", "EPS Trend",
		"Overall Score", "Expiration", "Sector", "Industry",
	}
}

// Record renders one row. Numeric fields are formatted to 2 decimal
// places; stored values keep full precision, this is the presentation
// boundary.
func Record(row core.ResultRow) []string {
	return []string{
		row.Ticker,
		row.Strategy.Label(),
		fmt.Sprintf("%.2f", row.CurrentPrice),
		fmt.Sprintf("%.2f", row.Strike),
		fmt.Sprintf("%.2f", row.AnalystTarget),
		fmt.Sprintf("%.2f", row.Premium),
		strconv.Itoa(row.DaysToExp),
		fmt.Sprintf("%.2f", row.AbsROI),
		fmt.Sprintf("%.2f", row.AnnROI),
		fmt.Sprintf("%.2f", row.DividendYield),
		row.NextEarnings,
		row.Recommendation,
		fmt.Sprintf("%.2f", row.TrailingEPS),
		row.EPSTrend,
		fmt.Sprintf("%.2f", row.OverallScore),
		row.Expiration.Format(dateLayout),
		row.Sector,
		row.Industry,
	}
}

// MarshalCSV serializes rows with a header line
func MarshalCSV(rows []core.ResultRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header()); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(Record(row)); err != nil {
			return nil, fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseCSV reads an exported file back into rows. Numeric fields come
// back at 2-decimal precision, the documented export loss.
func ParseCSV(data []byte) ([]core.ResultRow, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv")
	}
	if len(records[0]) != len(Header()) {
		return nil, fmt.Errorf("unexpected column count: %d", len(records[0]))
	}

	rows := make([]core.ResultRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(rec []string) (core.ResultRow, error) {
	var row core.ResultRow
	var err error

	row.Ticker = rec[0]
	if row.Strategy, err = core.ParseStrategy(rec[1]); err != nil {
		return row, err
	}

	floats := []struct {
		dst *float64
		idx int
	}{
		{&row.CurrentPrice, 2}, {&row.Strike, 3}, {&row.AnalystTarget, 4},
		{&row.Premium, 5}, {&row.AbsROI, 7}, {&row.AnnROI, 8},
		{&row.DividendYield, 9}, {&row.TrailingEPS, 12}, {&row.OverallScore, 14},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(rec[f.idx], 64); err != nil {
			return row, fmt.Errorf("column %d: %w", f.idx, err)
		}
	}

	if row.DaysToExp, err = strconv.Atoi(rec[6]); err != nil {
		return row, fmt.Errorf("days to exp: %w", err)
	}
	if row.Expiration, err = time.Parse(dateLayout, rec[15]); err != nil {
		return row, fmt.Errorf("expiration: %w", err)
	}

	row.NextEarnings = rec[10]
	row.Recommendation = rec[11]
	row.EPSTrend = rec[13]
	row.Sector = rec[16]
	row.Industry = rec[17]
	return row, nil
}

// Save writes the CSV export through an archive storage backend
func Save(ctx context.Context, store archive.Storage, filename string, rows []core.ResultRow) error {
	if filename == "" {
		filename = DefaultFilename
	}
	data, err := MarshalCSV(rows)
	if err != nil {
		return err
	}
	return store.Write(ctx, filename, data)
}
