package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ucassist-scraper/config"
	"ucassist-scraper/models"
	"ucassist-scraper/scraper/ucassist"
	"ucassist-scraper/services"
	"ucassist-scraper/storage"
	"ucassist-scraper/utils"
)

var cfg = config.FromEnv()

var rootCmd = &cobra.Command{
	Use:           "ucassist-scraper",
	Short:         "Scrapes the UC Assist service directory into a JSON document",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScrape,
}

var probeCmd = &cobra.Command{
	Use:          "probe",
	Short:        "Checks the site structure without writing any output",
	SilenceUsage: true,
	RunE:         runProbe,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "search entry page to start from")
	pf.IntVar(&cfg.MaxPages, "max-pages", cfg.MaxPages, "listing page bound")
	pf.DurationVar(&cfg.FetchTimeout, "timeout", cfg.FetchTimeout, "per-page readiness timeout")
	pf.IntVar(&cfg.MaxRetries, "retries", cfg.MaxRetries, "fetch attempts per page")
	pf.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run Chrome headless")

	f := rootCmd.Flags()
	f.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "JSON document path")
	f.StringVar(&cfg.CSVPath, "csv", cfg.CSVPath, "also export a CSV to this path")
	f.BoolVar(&cfg.DBEnabled, "db", cfg.DBEnabled, "also write records to PostgreSQL")

	rootCmd.AddCommand(probeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	utils.Info("Scraper starting | base=%s pages<=%d timeout=%v retries=%d",
		cfg.BaseURL, cfg.MaxPages, cfg.FetchTimeout, cfg.MaxRetries)

	if err := ucassist.Preflight(ctx, cfg); err != nil {
		utils.Error("Preflight failed: %v", err)
		return err
	}

	fetcher, err := ucassist.NewFetcher(ctx, cfg)
	if err != nil {
		utils.Error("Could not start browser session: %v", err)
		return err
	}
	defer fetcher.Close()

	crawler := ucassist.NewCrawler(cfg, fetcher, ucassist.NewWalker(fetcher, cfg), ucassist.NewExtractor(cfg))
	summary, records, err := crawler.Run(ctx)
	if err != nil {
		utils.Error("Crawl failed: %v", err)
		return err
	}

	records = services.CleanRecords(records, cfg.RequiredFields...)
	if len(records) == 0 {
		utils.Warn("No records extracted; output left untouched.")
		services.PrintSummary(summary)
		return nil
	}

	if err := storage.NewJSONWriter(cfg.OutputPath).Write(records); err != nil {
		utils.Error("Failed to save JSON document: %v", err)
		return err
	}

	if cfg.CSVPath != "" {
		if err := storage.NewCSVWriter(cfg.CSVPath).Write(records); err != nil {
			utils.Error("Failed to save CSV: %v", err)
			return err
		}
	}

	if cfg.DBEnabled {
		if err := writePostgres(records); err != nil {
			return err
		}
	}

	services.PrintSummary(summary)
	services.PrintReport(services.GenerateReport(records))
	return nil
}

func writePostgres(records []models.ServiceRecord) error {
	pg, err := storage.NewPostgresWriter(cfg)
	if err != nil {
		utils.Error("Failed to connect PostgreSQL: %v", err)
		return err
	}
	defer pg.Close()

	if err := pg.EnsureSchema(); err != nil {
		utils.Error("Failed to ensure PostgreSQL schema: %v", err)
		return err
	}
	if err := pg.WriteBatch(records); err != nil {
		utils.Error("Failed to save records to PostgreSQL: %v", err)
		return err
	}

	utils.Success("Saved %d records to PostgreSQL", len(records))
	return nil
}

// runProbe walks at most two listing pages and extracts one detail page, so
// structural drift on the site shows up before a full crawl is attempted.
func runProbe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := ucassist.Preflight(ctx, cfg); err != nil {
		utils.Error("Preflight failed: %v", err)
		return err
	}
	utils.Success("Site reachable: %s", cfg.BaseURL)

	probeCfg := *cfg
	if probeCfg.MaxPages > 2 {
		probeCfg.MaxPages = 2
	}

	fetcher, err := ucassist.NewFetcher(ctx, &probeCfg)
	if err != nil {
		utils.Error("Could not start browser session: %v", err)
		return err
	}
	defer fetcher.Close()

	walker := ucassist.NewWalker(fetcher, &probeCfg)
	var pages []models.ListingPage
	for walker.Next(ctx) {
		pages = append(pages, walker.Page())
	}
	if len(pages) == 0 {
		err := walker.Err()
		if err == nil {
			err = fmt.Errorf("no listing pages found under %s", probeCfg.BaseURL)
		}
		utils.Error("Listing probe failed: %v", err)
		return err
	}

	fieldsFound, note := probeDetail(ctx, fetcher, &probeCfg, pages[0])

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Site Probe")
	t.AppendRows([]table.Row{
		{"Listing pages reached", len(pages)},
		{"Detail links on page 1", len(pages[0].URLs)},
		{"Pagination control", len(pages) > 1},
		{"Fields on first detail", fieldsFound},
	})
	if note != "" {
		t.AppendRow(table.Row{"Detail note", note})
	}
	if walker.Err() != nil {
		t.AppendRow(table.Row{"Walk error", walker.Err().Error()})
	}
	t.Render()
	return nil
}

func probeDetail(ctx context.Context, fetcher *ucassist.Fetcher, cfg *config.Config, page models.ListingPage) (int, string) {
	if len(page.URLs) == 0 {
		return 0, "no detail links to probe"
	}

	snap, err := fetcher.Fetch(ctx, page.URLs[0], cfg.DetailReadySelector)
	if err != nil {
		return 0, err.Error()
	}

	rec, err := ucassist.NewExtractor(cfg).Extract(snap, page.URLs[0])
	if err != nil {
		return 0, err.Error()
	}
	return len(rec.Fields), ""
}
