package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/premia/internal/advisor"
	"github.com/newthinker/premia/internal/config"
	"github.com/newthinker/premia/internal/core"
	"github.com/newthinker/premia/internal/expiry"
	"github.com/newthinker/premia/internal/export"
	"github.com/newthinker/premia/internal/gateway"
	"github.com/newthinker/premia/internal/gateway/yahoo"
	"github.com/newthinker/premia/internal/logger"
	"github.com/newthinker/premia/internal/screen"
	"github.com/newthinker/premia/internal/storage/archive"
)

var (
	scanStrategy    string
	scanMoneyness   float64
	scanMinPrice    float64
	scanMaxPrice    float64
	scanTickers     []string
	scanExpirations int
	scanOutput      string
	scanNoExport    bool
	scanAdvise      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan option chains for income candidates",
	Long: `Scan fetches prices, option chains and fundamentals for the ticker
universe, selects the strike nearest the moneyness target for each weekly
expiration and ranks candidates by annualized ROI.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanStrategy, "strategy", "", "cash_secured_put or covered_call")
	scanCmd.Flags().Float64Var(&scanMoneyness, "moneyness", 0, "moneyness percent (1,2,3,4,5,10,15,20,30)")
	scanCmd.Flags().Float64Var(&scanMinPrice, "min-price", -1, "minimum share price")
	scanCmd.Flags().Float64Var(&scanMaxPrice, "max-price", -1, "maximum share price")
	scanCmd.Flags().StringSliceVar(&scanTickers, "tickers", nil, "ticker universe override")
	scanCmd.Flags().IntVar(&scanExpirations, "expirations", 0, "number of weekly expirations")
	scanCmd.Flags().StringVar(&scanOutput, "output", "", "CSV output filename")
	scanCmd.Flags().BoolVar(&scanNoExport, "no-export", false, "skip CSV export")
	scanCmd.Flags().BoolVar(&scanAdvise, "advise", false, "ask the configured LLM to comment on the top rows")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	req := buildScanRequest(cfg)
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	gw := yahoo.New()
	if err := gw.Init(gateway.Config{
		BaseURL: cfg.Gateway.BaseURL,
		Timeout: cfg.Gateway.Timeout,
	}); err != nil {
		return fmt.Errorf("initializing gateway: %w", err)
	}

	screener := screen.New(gw, log)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	rows, err := screener.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printRows(rows)

	if !scanNoExport {
		if err := exportRows(ctx, cfg, rows); err != nil {
			return err
		}
	}

	if scanAdvise {
		if err := printAdvice(ctx, cfg, req, rows); err != nil {
			log.Warn("advisor failed", zap.Error(err))
		}
	}

	return nil
}

// buildScanRequest merges CLI flags over the configured defaults.
func buildScanRequest(cfg *config.Config) core.ScanRequest {
	req := core.ScanRequest{
		Strategy:     core.Strategy(cfg.Screen.Strategy),
		MoneynessPct: cfg.Screen.MoneynessPct,
		MinPrice:     cfg.Screen.MinPrice,
		MaxPrice:     cfg.Screen.MaxPrice,
		Tickers:      cfg.Screen.Tickers,
	}
	count := cfg.Screen.ExpirationCount

	if scanStrategy != "" {
		if s, err := core.ParseStrategy(scanStrategy); err == nil {
			req.Strategy = s
		} else {
			req.Strategy = core.Strategy(scanStrategy)
		}
	}
	if scanMoneyness > 0 {
		req.MoneynessPct = scanMoneyness
	}
	if scanMinPrice >= 0 {
		req.MinPrice = scanMinPrice
	}
	if scanMaxPrice >= 0 {
		req.MaxPrice = scanMaxPrice
	}
	if len(scanTickers) > 0 {
		req.Tickers = scanTickers
	}
	if scanExpirations > 0 {
		count = scanExpirations
	}
	if count <= 0 {
		count = expiry.DefaultCount
	}
	req.Expirations = expiry.Upcoming(count)
	return req
}

// printRows renders the ranked candidates as an aligned table.
func printRows(rows []core.ResultRow) {
	if len(rows) == 0 {
		fmt.Println("No candidates matched the requested filters.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tSTRATEGY\tPRICE\tSTRIKE\tPREMIUM\tDAYS\tABS ROI%\tANN ROI%\tEXPIRATION")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%d\t%.2f\t%.2f\t%s\n",
			row.Ticker,
			row.Strategy.Label(),
			row.CurrentPrice,
			row.Strike,
			row.Premium,
			row.DaysToExp,
			row.AbsROI,
			row.AnnROI,
			row.Expiration.Format("2006-01-02"),
		)
	}
	w.Flush()
	fmt.Printf("\n%d candidates\n", len(rows))
}

// exportRows writes the CSV through the configured archive sink.
func exportRows(ctx context.Context, cfg *config.Config, rows []core.ResultRow) error {
	store, err := newArchive(cfg.Export)
	if err != nil {
		return fmt.Errorf("creating export sink: %w", err)
	}

	filename := cfg.Export.Filename
	if scanOutput != "" {
		filename = scanOutput
	}
	if filename == "" {
		filename = export.DefaultFilename
	}

	if err := export.Save(ctx, store, filename, rows); err != nil {
		return fmt.Errorf("exporting CSV: %w", err)
	}
	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// newArchive builds the storage backend selected by the export config.
func newArchive(cfg config.ExportConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Path)
	}
}

// printAdvice sends the top rows to the configured LLM and prints its take.
func printAdvice(ctx context.Context, cfg *config.Config, req core.ScanRequest, rows []core.ResultRow) error {
	adv, err := advisor.New(cfg.Advisor)
	if err != nil {
		return err
	}

	comment, err := adv.Review(ctx, req, rows)
	if err != nil {
		return err
	}

	fmt.Printf("\n--- Advisor ---\n%s\n", comment)
	return nil
}
