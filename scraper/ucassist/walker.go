package ucassist

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ucassist-scraper/config"
	"ucassist-scraper/models"
	"ucassist-scraper/utils"
)

// PageSession is the part of the browser session the walker drives. Both
// calls move the session's current page.
type PageSession interface {
	Fetch(ctx context.Context, pageURL, waitFor string) (*models.Snapshot, error)
	Click(ctx context.Context, sel, waitFor string) (*models.Snapshot, error)
}

// Walker pages through the directory's search results one listing page at a
// time. The search entry page renders no results of its own; the walker
// opens it, triggers the search, then advances with the next-page control
// until that control disappears or MaxPages is reached.
//
// It is used like a scanner:
//
//	for w.Next(ctx) {
//		page := w.Page()
//	}
//	if err := w.Err(); err != nil {
//		...
//	}
type Walker struct {
	session PageSession
	cfg     *config.Config

	current models.ListingPage
	snap    *models.Snapshot
	seen    map[string]bool
	pageNum int
	started bool
	done    bool
	err     error
}

func NewWalker(session PageSession, cfg *config.Config) *Walker {
	return &Walker{session: session, cfg: cfg, seen: make(map[string]bool)}
}

// Next advances to the following listing page. It returns false when the
// walk is finished or failed; Err reports which.
func (w *Walker) Next(ctx context.Context) bool {
	if w.done || w.err != nil {
		return false
	}

	var snap *models.Snapshot
	var err error

	if !w.started {
		w.started = true
		snap, err = w.openSearch(ctx)
	} else {
		if w.pageNum >= w.maxPages() || !w.hasNext() {
			w.done = true
			return false
		}
		snap, err = w.advance(ctx)
	}

	if err != nil {
		w.err = fmt.Errorf("listing page %d: %w", w.pageNum+1, err)
		return false
	}

	w.pageNum++
	w.snap = snap
	w.current = w.harvest(snap)
	return true
}

// Page returns the listing page produced by the last successful Next.
func (w *Walker) Page() models.ListingPage {
	return w.current
}

// Err returns the error that stopped the walk, if any.
func (w *Walker) Err() error {
	return w.err
}

// Reset rewinds the walker so the next call to Next starts over from the
// search entry page. Previously seen URLs are forgotten.
func (w *Walker) Reset() {
	w.current = models.ListingPage{}
	w.snap = nil
	w.seen = make(map[string]bool)
	w.pageNum = 0
	w.started = false
	w.done = false
	w.err = nil
}

// openSearch loads the search entry page and fires the search that renders
// listing page one. The sequence is retried as a unit: re-navigating resets
// the session no matter where a failed attempt left it.
func (w *Walker) openSearch(ctx context.Context) (*models.Snapshot, error) {
	var snap *models.Snapshot
	err := utils.Retry(ctx, w.cfg.MaxRetries, w.cfg.BackoffBase, w.cfg.BackoffCap, func() error {
		if _, err := w.session.Fetch(ctx, w.cfg.BaseURL, w.cfg.SearchSelector); err != nil {
			return err
		}
		s, err := w.session.Click(ctx, w.cfg.SearchSelector, w.cfg.ListingReadySelector)
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

// advance clicks through to the following listing page, spending the same
// retry budget as a detail fetch before the walk is given up. A failed
// advance leaves the session on the page already harvested, so re-clicking
// the control retries the same transition.
func (w *Walker) advance(ctx context.Context) (*models.Snapshot, error) {
	var snap *models.Snapshot
	err := utils.Retry(ctx, w.cfg.MaxRetries, w.cfg.BackoffBase, w.cfg.BackoffCap, func() error {
		s, err := w.session.Click(ctx, w.cfg.NextSelector, w.cfg.ListingReadySelector)
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

// maxPages is the walk bound. Values below one still walk a single page.
func (w *Walker) maxPages() int {
	if w.cfg.MaxPages < 1 {
		return 1
	}
	return w.cfg.MaxPages
}

// hasNext reports whether the current listing page still shows the
// next-page control. Its absence is the site's only end-of-results signal.
func (w *Walker) hasNext() bool {
	if w.snap == nil {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.snap.HTML))
	if err != nil {
		return false
	}
	return doc.Find(w.cfg.NextSelector).Length() > 0
}

// harvest pulls the detail links off a listing page. Anchors are matched by
// visible text; unusable or previously seen URLs are dropped.
func (w *Walker) harvest(snap *models.Snapshot) models.ListingPage {
	page := models.ListingPage{Number: w.pageNum}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		utils.Warn("listing page %d did not parse: %v", w.pageNum, err)
		return page
	}

	base, _ := url.Parse(snap.URL)
	if base == nil || base.Host == "" {
		base, _ = url.Parse(w.cfg.BaseURL)
	}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if normalizeSpace(a.Text()) != w.cfg.DetailLinkText {
			return
		}
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		canonical, err := CanonicalURL(base, href, w.cfg.VolatileParams)
		if err != nil {
			return
		}
		if w.seen[canonical] {
			return
		}
		w.seen[canonical] = true
		page.URLs = append(page.URLs, canonical)
	})

	return page
}
