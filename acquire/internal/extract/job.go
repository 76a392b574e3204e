// Package extract materialises a document into one file using an ordered
// chain of strategies: direct PDF fetch, browser-rendered PDF, then HTML
// capture of the viewer page.
package extract

import (
	"context"
	"fmt"

	"github.com/hazyhaar/docfetch/acquire/internal/browser"
	"github.com/hazyhaar/docfetch/acquire/internal/portal"
	"github.com/hazyhaar/docfetch/acquire/model"
)

// Job carries one document through the strategy chain.
type Job struct {
	Page    browser.Page
	Adapter portal.Adapter
	Detail  *model.Detail

	viewerHTML   string
	viewerLoaded bool
}

// ViewerURL is the portal's content-viewer page for the document.
func (j *Job) ViewerURL() string {
	return j.Adapter.ViewerURL(j.Detail.ExternalID)
}

// DetailURL is the canonical detail page.
func (j *Job) DetailURL() string {
	if j.Detail.URL != "" {
		return j.Detail.URL
	}
	return j.Adapter.DetailURL(j.Detail.ExternalID)
}

// Viewer loads the content-viewer page once and returns its markup.
// Later calls reuse the first rendering.
func (j *Job) Viewer(ctx context.Context) (string, error) {
	if j.viewerLoaded {
		return j.viewerHTML, nil
	}
	if err := j.Page.Navigate(ctx, j.ViewerURL()); err != nil {
		return "", fmt.Errorf("extract: open viewer: %w", err)
	}
	html, err := j.Page.HTML(ctx)
	if err != nil {
		return "", fmt.Errorf("extract: viewer html: %w", err)
	}
	j.viewerHTML, j.viewerLoaded = html, true
	return html, nil
}

// Artifact is the in-memory payload a strategy produced.
type Artifact struct {
	Strategy  model.Strategy
	Data      []byte
	SourceURL string
	Pages     int
}

// Strategy is one acquisition method. Attempt returns an error wrapping
// model.ErrInapplicable when the method cannot work for this document;
// any other error aborts the chain.
type Strategy interface {
	Name() model.Strategy
	Attempt(ctx context.Context, job *Job) (*Artifact, error)
}

// Verifier re-checks the portal session between strategies.
type Verifier interface {
	Verify(ctx context.Context, page browser.Page) error
}

func inapplicable(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), model.ErrInapplicable)
}
