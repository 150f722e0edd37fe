package ucassist

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"ucassist-scraper/config"
	"ucassist-scraper/utils"
)

// Preflight confirms the directory answers over plain HTTP before any
// browser is launched. A failure here wraps ErrSession, since no crawl can
// proceed against an unreachable site.
func Preflight(ctx context.Context, cfg *config.Config) error {
	client := resty.New().
		SetTimeout(cfg.FetchTimeout).
		SetHeader("User-Agent", utils.RandomUserAgent())

	resp, err := client.R().SetContext(ctx).Get(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: reaching %s: %w", ErrSession, cfg.BaseURL, err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("%w: %s returned HTTP %d", ErrSession, cfg.BaseURL, resp.StatusCode())
	}
	return nil
}
