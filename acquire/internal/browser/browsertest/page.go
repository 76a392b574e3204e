// Package browsertest provides an in-memory browser.Page for tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/hazyhaar/docfetch/acquire/internal/browser"
)

// Page serves canned HTML per URL and records every interaction.
type Page struct {
	mu sync.Mutex

	// Pages maps a URL to the HTML rendered after navigating to it.
	Pages map[string]string
	// AfterSubmit is the HTML shown after a login submit. Empty keeps the
	// current document.
	AfterSubmit string
	// OnSubmit, when set, replaces AfterSubmit and may return an error.
	OnSubmit func() (string, error)
	// NavErrors forces Navigate to fail for a URL.
	NavErrors map[string]error

	CookieJar []*http.Cookie

	PDF      []byte
	PDFError error

	current string
	html    string

	Navigations []string
	Filled      map[string]string
	Submits     int
	Prints      int
}

var _ browser.Page = (*Page)(nil)

// New returns a Page serving pages.
func New(pages map[string]string) *Page {
	return &Page{Pages: pages, Filled: make(map[string]string)}
}

func (p *Page) Navigate(_ context.Context, rawURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Navigations = append(p.Navigations, rawURL)
	if err := p.NavErrors[rawURL]; err != nil {
		return err
	}
	html, ok := p.Pages[rawURL]
	if !ok {
		html = "<html><body></body></html>"
	}
	p.current = rawURL
	p.html = html
	return nil
}

func (p *Page) HTML(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html, nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Page) Fill(_ context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Filled == nil {
		p.Filled = make(map[string]string)
	}
	p.Filled[selector] = value
	return nil
}

func (p *Page) Submit(_ context.Context, _, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Submits++
	if p.OnSubmit != nil {
		html, err := p.OnSubmit()
		if err != nil {
			return err
		}
		p.html = html
		return nil
	}
	if p.AfterSubmit != "" {
		p.html = p.AfterSubmit
	}
	return nil
}

func (p *Page) Cookies(_ context.Context, _ string) ([]*http.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CookieJar, nil
}

func (p *Page) PrintPDF(_ context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Prints++
	if p.PDFError != nil {
		return nil, p.PDFError
	}
	if p.PDF == nil {
		return nil, errors.New("browsertest: no PDF configured")
	}
	return p.PDF, nil
}

// SetHTML replaces the current document without a navigation.
func (p *Page) SetHTML(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
}

// Visited reports how many times rawURL was navigated to.
func (p *Page) Visited(rawURL string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, u := range p.Navigations {
		if u == rawURL {
			n++
		}
	}
	return n
}

func (p *Page) String() string {
	return fmt.Sprintf("browsertest.Page(%s)", p.current)
}
