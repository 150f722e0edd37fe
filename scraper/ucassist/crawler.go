package ucassist

import (
	"context"
	"fmt"
	"time"

	"ucassist-scraper/config"
	"ucassist-scraper/models"
	"ucassist-scraper/utils"
)

// PageFetcher fetches one page by URL and returns its rendered document.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL, waitFor string) (*models.Snapshot, error)
}

// ListingSource yields listing pages one at a time.
type ListingSource interface {
	Next(ctx context.Context) bool
	Page() models.ListingPage
	Err() error
	Reset()
}

// RecordExtractor builds a record from a rendered detail page.
type RecordExtractor interface {
	Extract(snap *models.Snapshot, pageURL string) (models.ServiceRecord, error)
}

// Crawler sequences a full crawl: walk the listing pages, then fetch and
// extract every discovered detail page. Listing discovery runs to completion
// first because paging through results happens inside the same browser
// session that detail fetches move around.
type Crawler struct {
	cfg       *config.Config
	fetcher   PageFetcher
	walker    ListingSource
	extractor RecordExtractor
}

func NewCrawler(cfg *config.Config, fetcher PageFetcher, walker ListingSource, extractor RecordExtractor) *Crawler {
	return &Crawler{cfg: cfg, fetcher: fetcher, walker: walker, extractor: extractor}
}

// Run executes one crawl. It fails outright only when no listing page could
// be reached at all; every later failure is retried, then skipped and
// reported in the summary, so one broken page never costs the run.
func (c *Crawler) Run(ctx context.Context) (*models.Summary, []models.ServiceRecord, error) {
	start := time.Now()
	state := models.NewCrawlState()

	c.walker.Reset()
	var pages []models.ListingPage
	for c.walker.Next(ctx) {
		page := c.walker.Page()
		pages = append(pages, page)
		utils.Info("listing page %d: %d detail links", page.Number, len(page.URLs))
	}

	walkErr := c.walker.Err()
	if len(pages) == 0 {
		if walkErr != nil {
			return nil, nil, fmt.Errorf("listing discovery: %w", walkErr)
		}
		return nil, nil, fmt.Errorf("no listing pages found under %s", c.cfg.BaseURL)
	}
	if walkErr != nil {
		utils.Warn("listing walk ended early after page %d: %v", len(pages), walkErr)
	}

	for _, page := range pages {
		for _, pageURL := range page.URLs {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			if !state.Visit(pageURL) {
				continue
			}
			utils.Delay(ctx, c.cfg.MinDelay, c.cfg.MaxDelay)
			c.processDetail(ctx, state, page.Number, pageURL)
		}
	}

	sum := &models.Summary{
		PagesWalked: len(pages),
		Extracted:   len(state.Records),
		Skipped:     len(state.Skips),
		Skips:       state.Skips,
		Elapsed:     time.Since(start),
	}
	if walkErr != nil {
		sum.WalkError = walkErr.Error()
	}
	return sum, state.Records, nil
}

// processDetail fetches one detail page and folds the outcome into state.
// Fetch failures burn through the retry budget; an extraction failure gets
// a single refetch, which covers pages captured mid-render, before the page
// is skipped.
func (c *Crawler) processDetail(ctx context.Context, state *models.CrawlState, pageNum int, pageURL string) {
	snap, err := c.fetchWithRetry(ctx, pageURL)
	if err != nil {
		state.Skip(pageURL, err.Error(), c.cfg.MaxRetries)
		utils.Warn("skipping %s: %v", pageURL, err)
		return
	}

	rec, err := c.extractor.Extract(snap, pageURL)
	if err != nil {
		snap2, ferr := c.fetcher.Fetch(ctx, pageURL, c.cfg.DetailReadySelector)
		if ferr == nil {
			rec, err = c.extractor.Extract(snap2, pageURL)
		}
		if ferr != nil || err != nil {
			reason := err
			if reason == nil {
				reason = ferr
			}
			state.Skip(pageURL, reason.Error(), 2)
			utils.Warn("skipping %s: %v", pageURL, reason)
			return
		}
	}

	if state.Accumulate(rec) {
		utils.Success("page %d: %s", pageNum, rec.Name())
	} else {
		utils.Info("duplicate record dropped: %s", pageURL)
	}
}

func (c *Crawler) fetchWithRetry(ctx context.Context, pageURL string) (*models.Snapshot, error) {
	var snap *models.Snapshot
	err := utils.Retry(ctx, c.cfg.MaxRetries, c.cfg.BackoffBase, c.cfg.BackoffCap, func() error {
		s, err := c.fetcher.Fetch(ctx, pageURL, c.cfg.DetailReadySelector)
		if err != nil {
			return err
		}
		snap = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
