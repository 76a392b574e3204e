// Package portal isolates knowledge of the portal's markup behind an
// Adapter. When the portal changes its templates, a new Adapter version is
// added here and the session, listing and detail code stays untouched.
package portal

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markup lists the selectors and text markers one portal version uses.
type Markup struct {
	// Fingerprint is a selector that only this markup version renders.
	Fingerprint string

	SearchItems string
	RecentItems string
	// SearchMinTitle, when positive, drops search anchors whose title has
	// this many runes or fewer. Zero keeps every titled anchor; short
	// standard codes such as "ДБН В.1" are real results.
	SearchMinTitle int

	IdentifierInput string
	SecretInput     string
	SubmitControl   string
	SubmitText      string

	GreetingMarkers []string
	LoginMarkers    []string
	FailureMarkers  []string

	Title        string
	MetadataRows string
	AssetLinks   string

	ViewerFrame string
	FrameParam  string
	Content     string

	Lang        string
	SourceLabel string
}

// Adapter maps portal operations to URLs and markup.
type Adapter interface {
	Name() string
	Base() *url.URL
	HomeURL() string
	LoginURL() string
	SearchURL(query string) string
	DetailURL(id string) string
	ViewerURL(id string) string
	// DocumentID recovers the portal id from an anchor href.
	DocumentID(href string) (string, bool)
	Markup() *Markup
	// Probe reports whether the rendered page was produced by this version.
	Probe(doc *goquery.Document) bool
}

// Select returns the first adapter whose Probe accepts html. When none
// does, the first adapter is returned with ok=false.
func Select(html string, adapters ...Adapter) (a Adapter, ok bool) {
	if len(adapters) == 0 {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return adapters[0], false
	}
	for _, a := range adapters {
		if a.Probe(doc) {
			return a, true
		}
	}
	return adapters[0], false
}

// Resolve makes href absolute against base. Unparseable hrefs are
// returned unchanged.
func Resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}
