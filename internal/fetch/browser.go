package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Browser fetches pages through a headless Chrome instance, for listings
// that only render their topic links after client-side scripts run. The
// browser session is owned by whoever constructs it; Close releases it.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewBrowser starts a headless browser allocator shared by all fetches.
func NewBrowser(timeout time.Duration, logger zerolog.Logger) *Browser {
	opts := append([]chromedp.ExecAllocatorOption{},
		chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.UserAgent(defaultUserAgent),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		timeout:     timeout,
		logger:      logger.With().Str("component", "browser").Logger(),
	}
}

// Fetch renders the page in a fresh tab and returns its serialized markup.
func (b *Browser) Fetch(ctx context.Context, url string) ([]byte, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, b.timeout)
	defer cancelRun()

	// Propagate caller cancellation into the tab.
	stop := context.AfterFunc(ctx, cancelRun)
	defer stop()

	start := time.Now()
	var markup string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &markup),
	)
	if err != nil {
		return nil, fmt.Errorf("browser fetch %s: %w", url, err)
	}

	b.logger.Debug().
		Str("url", url).
		Int("bytes", len(markup)).
		Dur("elapsed", time.Since(start)).
		Msg("rendered page")

	return []byte(markup), nil
}

// Close shuts down the browser allocator.
func (b *Browser) Close() {
	b.allocCancel()
}
