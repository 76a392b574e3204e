package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/hazyhaar/docfetch/acquire/internal/portal"
	"github.com/hazyhaar/docfetch/acquire/model"
)

// DefaultUserAgent is sent on direct PDF transfers.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// DirectConfig configures DirectPDF.
type DirectConfig struct {
	// Timeout bounds one transfer. Default: 2m.
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
	// Client overrides the HTTP client. Nil builds one from the fields above.
	Client *resty.Client
}

// DirectPDF downloads the PDF bytes outside the browser, replaying the
// tab's session cookies.
type DirectPDF struct {
	client *resty.Client
	logger *slog.Logger
}

// NewDirectPDF creates the strategy.
func NewDirectPDF(cfg DirectConfig) *DirectPDF {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	c := cfg.Client
	if c == nil {
		c = resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("User-Agent", cfg.UserAgent).
			SetHeader("Accept", "application/pdf,*/*;q=0.8")
	}
	return &DirectPDF{client: c, logger: cfg.Logger}
}

func (d *DirectPDF) Name() model.Strategy { return model.StrategyDirectPDF }

// Attempt tries the detail page's asset link first, then the PDF behind
// the viewer frame. A candidate that answers non-2xx or with something
// other than a PDF only rules out that URL; a transport failure ends the
// strategy.
func (d *DirectPDF) Attempt(ctx context.Context, job *Job) (*Artifact, error) {
	var skipped []string

	if u := job.Detail.PDFURL; u != "" {
		art, err := d.fetch(ctx, job, u, job.DetailURL())
		if err == nil {
			return art, nil
		}
		if !errors.Is(err, model.ErrInapplicable) {
			return nil, err
		}
		d.logger.Info("extract: asset link unusable, trying viewer frame", "url", u, "reason", err)
		skipped = append(skipped, err.Error())
	}

	html, err := job.Viewer(ctx)
	if err != nil {
		return nil, err
	}
	frameURL := FramePDF(html, job.ViewerURL(), job.Adapter.Markup())
	if frameURL == "" || frameURL == job.Detail.PDFURL {
		skipped = append(skipped, "no pdf frame on viewer page")
		return nil, inapplicable("%s", strings.Join(skipped, "; "))
	}
	return d.fetch(ctx, job, frameURL, job.ViewerURL())
}

func (d *DirectPDF) fetch(ctx context.Context, job *Job, pdfURL, referer string) (*Artifact, error) {
	cookies, err := job.Page.Cookies(ctx, pdfURL)
	if err != nil {
		return nil, fmt.Errorf("extract: session cookies: %w", err)
	}
	d.logger.Info("extract: direct fetch", "url", pdfURL, "cookies", len(cookies))

	resp, err := d.client.R().
		SetContext(ctx).
		SetCookies(cookies).
		SetHeader("Referer", referer).
		Get(pdfURL)
	if err != nil {
		return nil, fmt.Errorf("extract: GET %s: %v: %w", pdfURL, err, model.ErrTransferFailed)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("extract: GET %s: status %d: %w: %w",
			pdfURL, resp.StatusCode(), model.ErrTransferFailed, model.ErrInapplicable)
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, inapplicable("empty body from %s", pdfURL)
	}
	if !isPDF(body) {
		return nil, inapplicable("%s returned %q, not a pdf", pdfURL, resp.Header().Get("Content-Type"))
	}

	return &Artifact{
		Strategy:  model.StrategyDirectPDF,
		Data:      body,
		SourceURL: pdfURL,
		Pages:     pageCount(body, d.logger),
	}, nil
}

// FramePDF recovers the PDF address from the viewer page's embedded frame.
// The frame is a PDF viewer whose file parameter holds the document URL,
// relative to the frame; a frame pointing at a .pdf directly is accepted
// too. Returns "" when nothing usable is found.
func FramePDF(html, viewerURL string, mk *portal.Markup) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, ok := doc.Find(mk.ViewerFrame).First().Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return ""
	}
	base, err := url.Parse(viewerURL)
	if err != nil {
		return ""
	}
	frame, err := base.Parse(strings.TrimSpace(src))
	if err != nil {
		return ""
	}

	file := frame.Query().Get(mk.FrameParam)
	if file == "" {
		if strings.HasSuffix(strings.ToLower(frame.Path), ".pdf") {
			return frame.String()
		}
		return ""
	}
	target, err := frame.Parse(file)
	if err != nil {
		return ""
	}
	return target.String()
}

func isPDF(b []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(b, " \t\r\n"), []byte("%PDF"))
}
