package utils

import (
	"context"
	"math/rand"

	"github.com/chromedp/chromedp"
)

// userAgents are real browser strings rotated per session so every run does
// not present the identical fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
}

func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// StealthOpts returns the Chrome launch options for a scraping session.
// disable-blink-features=AutomationControlled clears navigator.webdriver,
// and headless uses the newer "new" mode when requested.
func StealthOpts(headless bool) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(RandomUserAgent()),
	}

	if headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}

	return opts
}

// HideWebDriver patches the JS properties bot checks inspect. Run it after
// navigation, before reading anything off the page.
func HideWebDriver() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.Evaluate(`
			Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
			Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
		`, nil).Do(ctx)
	})
}
