package ucassist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"ucassist-scraper/config"
	"ucassist-scraper/models"
	"ucassist-scraper/utils"
)

// Fetcher owns the single Chrome session a crawl runs in. All navigation
// happens in one tab, so every Fetch or Click moves the session's current
// page.
type Fetcher struct {
	cfg         *config.Config
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
}

// NewFetcher launches Chrome and opens the crawl tab. A browser that cannot
// come up wraps ErrSession.
func NewFetcher(ctx context.Context, cfg *config.Config) (*Fetcher, error) {
	utils.Info("launching chrome...")
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, utils.StealthOpts(cfg.Headless)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// The first Run starts the browser process.
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: starting chrome: %w", ErrSession, err)
	}

	utils.Success("browser ready")
	return &Fetcher{
		cfg:         cfg,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}, nil
}

func (f *Fetcher) Close() {
	utils.Info("closing browser...")
	f.tabCancel()
	f.allocCancel()
}

// Fetch navigates the session tab to pageURL, waits until waitFor is
// visible, lets scripts settle, and returns the rendered document.
func (f *Fetcher) Fetch(ctx context.Context, pageURL, waitFor string) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(f.tabCtx, f.cfg.FetchTimeout)
	defer cancel()

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(pageURL))
	if err != nil {
		return nil, f.classify(err, pageURL)
	}
	if resp != nil && resp.Status >= 400 {
		return nil, fmt.Errorf("%w: %s returned HTTP %d", ErrNavigationFailed, pageURL, resp.Status)
	}

	return f.capture(runCtx, pageURL, waitFor)
}

// Click clicks sel on the session's current page, waits until waitFor is
// visible, and returns the document the session lands on. The directory's
// pagination and search controls are script-driven, so advancing is a click,
// not a URL.
func (f *Fetcher) Click(ctx context.Context, sel, waitFor string) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(f.tabCtx, f.cfg.FetchTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return nil, f.classify(err, sel)
	}

	return f.capture(runCtx, sel, waitFor)
}

func (f *Fetcher) capture(runCtx context.Context, subject, waitFor string) (*models.Snapshot, error) {
	var html, loc string
	err := chromedp.Run(runCtx,
		utils.HideWebDriver(),
		chromedp.WaitVisible(waitFor, chromedp.ByQuery),
		chromedp.Sleep(f.cfg.SettleDelay),
		chromedp.Location(&loc),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, f.classify(err, subject)
	}
	return &models.Snapshot{URL: loc, HTML: html, FetchedAt: time.Now()}, nil
}

// classify maps a chromedp failure onto the retryability taxonomy. An
// expired deadline means the page never reached its ready state; a cancelled
// parent context passes through untouched so callers stop instead of
// retrying.
func (f *Fetcher) classify(err error, subject string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s after %v", ErrFetchTimeout, subject, f.cfg.FetchTimeout)
	default:
		return fmt.Errorf("%w: %s: %w", ErrNavigationFailed, subject, err)
	}
}
