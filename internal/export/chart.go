package export

import (
	"time"

	"github.com/newthinker/premia/internal/core"
)

// Point is one chart sample: annualized ROI at an expiration date
type Point struct {
	Expiration time.Time `json:"expiration"`
	AnnROI     float64   `json:"ann_roi"`
}

// Series is the chart line for one ticker
type Series struct {
	Ticker string  `json:"ticker"`
	Points []Point `json:"points"`
}

// ChartSeries projects result rows into per-ticker ROI-vs-expiration
// lines. Rows are grouped by encounter order; points keep the order the
// rows arrive in.
func ChartSeries(rows []core.ResultRow) []Series {
	index := make(map[string]int)
	var series []Series

	for _, row := range rows {
		i, ok := index[row.Ticker]
		if !ok {
			i = len(series)
			index[row.Ticker] = i
			series = append(series, Series{Ticker: row.Ticker})
		}
		series[i].Points = append(series[i].Points, Point{
			Expiration: row.Expiration,
			AnnROI:     row.AnnROI,
		})
	}
	return series
}
