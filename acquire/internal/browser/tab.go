package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/time/rate"

	"github.com/hazyhaar/docfetch/acquire/model"
)

// Tab wraps the acquired Rod page.
type Tab struct {
	page       *rod.Page
	owned      bool
	router     *rod.HijackRouter
	navTimeout time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
	current    string
}

var _ Page = (*Tab)(nil)

// Navigate loads rawURL with the bounded wait.
func (t *Tab) Navigate(ctx context.Context, rawURL string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("browser: rate limit: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, t.navTimeout)
	defer cancel()

	p := t.page.Context(navCtx)
	wait := p.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := p.Navigate(rawURL); err != nil {
		return t.navError(navCtx, rawURL, err)
	}
	wait()
	if err := navCtx.Err(); err != nil {
		return t.navError(navCtx, rawURL, err)
	}

	t.current = rawURL
	t.logger.Debug("browser: navigated", "url", rawURL)
	return nil
}

// HTML returns the current DOM.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	html, err := t.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return html, nil
}

// URL returns the current document address as reported by the browser,
// falling back to the last navigated URL.
func (t *Tab) URL() string {
	if info, err := t.page.Info(); err == nil && info.URL != "" {
		return info.URL
	}
	return t.current
}

// Fill types value into the first element matching selector.
func (t *Tab) Fill(ctx context.Context, selector, value string) error {
	lookCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	el, err := t.page.Context(lookCtx).Element(selector)
	if err != nil {
		return fmt.Errorf("browser: find %s: %w", selector, err)
	}
	el = el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("browser: select %s: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("browser: input %s: %w", selector, err)
	}
	return nil
}

// Submit clicks the submit control and waits for the next page.
func (t *Tab) Submit(ctx context.Context, selector, text string) error {
	lookCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var el *rod.Element
	var err error
	if text != "" {
		el, err = t.page.Context(lookCtx).ElementR(selector, regexp.QuoteMeta(text))
	} else {
		el, err = t.page.Context(lookCtx).Element(selector)
	}
	if err != nil {
		return fmt.Errorf("browser: find submit control: %w", err)
	}

	navCtx, navCancel := context.WithTimeout(ctx, t.navTimeout)
	defer navCancel()

	wait := t.page.Context(navCtx).WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := el.Context(navCtx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return t.navError(navCtx, "submit", err)
	}
	wait()
	if err := navCtx.Err(); err != nil {
		return t.navError(navCtx, "submit", err)
	}
	return nil
}

// Cookies returns the browser's cookies applicable to rawURL.
func (t *Tab) Cookies(ctx context.Context, rawURL string) ([]*http.Cookie, error) {
	list, err := t.page.Context(ctx).Cookies([]string{rawURL})
	if err != nil {
		return nil, fmt.Errorf("browser: cookies: %w", err)
	}
	out := make([]*http.Cookie, 0, len(list))
	for _, c := range list {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
	}
	return out, nil
}

// PrintPDF prints the current page on A4 with 1cm margins.
func (t *Tab) PrintPDF(ctx context.Context) ([]byte, error) {
	r, err := t.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      num(8.27),
		PaperHeight:     num(11.69),
		MarginTop:       num(0.39),
		MarginBottom:    num(0.39),
		MarginLeft:      num(0.39),
		MarginRight:     num(0.39),
	})
	if err != nil {
		return nil, fmt.Errorf("browser: print to pdf: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("browser: read pdf stream: %w", err)
	}
	return data, nil
}

func (t *Tab) navError(navCtx context.Context, target string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(navCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("browser: %s after %s: %w", target, t.navTimeout, model.ErrNavigationTimeout)
	}
	return fmt.Errorf("browser: navigate %s: %w", target, err)
}

func num(f float64) *float64 { return &f }
