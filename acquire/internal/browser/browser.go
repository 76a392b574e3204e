// Package browser attaches to an externally managed Chrome over its remote
// debugging endpoint. It never launches or kills the browser process: the
// connection is acquired for one invocation and released by closing the
// websocket, leaving Chrome and its other tabs running.
package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"golang.org/x/time/rate"
)

// Page is the surface the acquisition pipeline drives. *Tab implements it
// against a real browser; tests use browsertest.Page.
type Page interface {
	// Navigate loads rawURL and waits until the network is almost idle.
	// A wait longer than the navigation timeout yields ErrNavigationTimeout.
	Navigate(ctx context.Context, rawURL string) error
	// HTML returns the serialised DOM of the current document.
	HTML(ctx context.Context) (string, error)
	// URL is the address of the current document.
	URL() string
	// Fill replaces the value of the first element matching selector.
	Fill(ctx context.Context, selector, value string) error
	// Submit clicks the first element matching selector (and containing
	// text, when text is set) and waits for the resulting navigation.
	Submit(ctx context.Context, selector, text string) error
	// Cookies returns the cookies the browser would send to rawURL.
	Cookies(ctx context.Context, rawURL string) ([]*http.Cookie, error)
	// PrintPDF renders the current document with the browser's print
	// engine.
	PrintPDF(ctx context.Context) ([]byte, error)
}

// DefaultRemoteURL is Chrome's default remote debugging endpoint.
const DefaultRemoteURL = "http://localhost:9222"

// Config configures Connect.
type Config struct {
	// RemoteURL is the debugging endpoint, either http(s)://host:port or a
	// ws:// browser URL. Default: DefaultRemoteURL.
	RemoteURL string

	// NavigationTimeout bounds every page transition. Default: 30s.
	NavigationTimeout time.Duration

	// NavigationRate caps navigations per second. Default: 2.
	NavigationRate float64

	// ResourceBlocking lists resource types to block (images, fonts, media, stylesheets).
	ResourceBlocking []string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.RemoteURL == "" {
		c.RemoteURL = DefaultRemoteURL
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	if c.NavigationRate <= 0 {
		c.NavigationRate = 2
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Conn is one attachment to the remote browser.
type Conn struct {
	cfg     Config
	ws      *cdp.WebSocket
	browser *rod.Browser
	tab     *Tab
}

// Connect attaches to the browser at cfg.RemoteURL and acquires a tab:
// the first existing page when there is one, a fresh stealth page
// otherwise.
func Connect(ctx context.Context, cfg Config) (*Conn, error) {
	cfg.defaults()
	log := cfg.Logger

	wsURL, err := launcher.ResolveURL(cfg.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("browser: resolve %s: %w", cfg.RemoteURL, err)
	}

	ws := &cdp.WebSocket{}
	if err := ws.Connect(ctx, wsURL, nil); err != nil {
		return nil, fmt.Errorf("browser: connect %s: %w", cfg.RemoteURL, err)
	}

	b := rod.New().Client(cdp.New().Start(ws)).Context(ctx)
	if err := b.Connect(); err != nil {
		closeWS(ws)
		return nil, fmt.Errorf("browser: attach: %w", err)
	}

	c := &Conn{cfg: cfg, ws: ws, browser: b}

	page, owned, err := c.acquirePage()
	if err != nil {
		closeWS(ws)
		return nil, err
	}

	c.tab = &Tab{
		page:       page,
		owned:      owned,
		navTimeout: cfg.NavigationTimeout,
		limiter:    rate.NewLimiter(rate.Limit(cfg.NavigationRate), 1),
		logger:     log,
	}

	if len(cfg.ResourceBlocking) > 0 {
		router, err := applyResourceBlocking(page, cfg.ResourceBlocking)
		if err != nil {
			log.Warn("browser: resource blocking failed", "error", err)
		} else {
			c.tab.router = router
		}
	}

	log.Info("browser: attached", "remote", cfg.RemoteURL, "reused_tab", !owned)
	return c, nil
}

func (c *Conn) acquirePage() (*rod.Page, bool, error) {
	pages, err := c.browser.Pages()
	if err != nil {
		return nil, false, fmt.Errorf("browser: list pages: %w", err)
	}
	if p := pages.First(); p != nil {
		return p, false, nil
	}
	p, err := stealth.Page(c.browser)
	if err != nil {
		return nil, false, fmt.Errorf("browser: create tab: %w", err)
	}
	return p, true, nil
}

// Tab returns the acquired tab.
func (c *Conn) Tab() *Tab { return c.tab }

// Release closes a tab this connection opened, stops request hijacking and
// drops the websocket. The browser process keeps running.
func (c *Conn) Release() error {
	if c.tab != nil {
		if c.tab.router != nil {
			if err := c.tab.router.Stop(); err != nil {
				c.cfg.Logger.Debug("browser: stop hijack router", "error", err)
			}
		}
		if c.tab.owned {
			if err := c.tab.page.Close(); err != nil {
				c.cfg.Logger.Warn("browser: close tab", "error", err)
			}
		}
	}
	closeWS(c.ws)
	c.cfg.Logger.Info("browser: released")
	return nil
}

func closeWS(ws *cdp.WebSocket) {
	if cl, ok := any(ws).(io.Closer); ok {
		_ = cl.Close()
	}
}
