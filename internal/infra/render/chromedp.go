package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/adapter"
)

const renderTimeout = 30 * time.Second

// Compile-time check
var _ adapter.DigestRenderer = (*ChromeRenderer)(nil)

// ChromeRenderer prints the digest HTML to an A4 PDF through a headless
// Chromium driven by chromedp. Each render gets its own browser context so
// a wedged tab cannot poison later runs.
type ChromeRenderer struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

func NewChromeRenderer(parent context.Context) *ChromeRenderer {
	allocCtx, cancel := chromedp.NewExecAllocator(parent, chromedp.DefaultExecAllocatorOptions[:]...)
	return &ChromeRenderer{allocCtx: allocCtx, cancel: cancel}
}

func (r *ChromeRenderer) Close() { r.cancel() }

func (r *ChromeRenderer) RenderPDF(ctx context.Context, events []*model.Event, userName string, rng adapter.DateRange) ([]byte, error) {
	html, err := buildDigestHTML(events, userName, rangeLabel(rng))
	if err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, renderTimeout)
	defer timeoutCancel()

	// Honor the caller's cancellation as well as our own timeout.
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-tabCtx.Done():
		}
	}()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(dataURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 inches
				WithPaperHeight(11.7).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	}
	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return nil, fmt.Errorf("render: chromedp run failed: %w", err)
	}
	return pdf, nil
}

func rangeLabel(rng adapter.DateRange) string {
	return fmt.Sprintf("%s to %s", rng.From, rng.To)
}
