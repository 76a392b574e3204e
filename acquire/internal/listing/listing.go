// Package listing turns rendered search-result and landing pages into
// document references. It never touches the network.
package listing

import (
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/docfetch/acquire/internal/portal"
	"github.com/hazyhaar/docfetch/acquire/model"
)

// Kind selects which anchors of a page are listing entries.
type Kind int

const (
	// Search is the search-results page.
	Search Kind = iota
	// Recent is the portal landing page with the newest documents.
	Recent
)

func (k Kind) String() string {
	if k == Recent {
		return "recent"
	}
	return "search"
}

// Parse yields the references found in html, in document order, at most
// limit of them and without repeating an ExternalID. Anchors without a
// recoverable id or with an empty title are skipped. The sequence can be
// ranged over more than once.
func Parse(html string, limit int, a portal.Adapter, kind Kind) iter.Seq[model.Reference] {
	if limit <= 0 {
		return func(func(model.Reference) bool) {}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return func(func(model.Reference) bool) {}
	}

	mk := a.Markup()
	selector, minTitle := mk.SearchItems, mk.SearchMinTitle
	if kind == Recent {
		selector, minTitle = mk.RecentItems, 0
	}

	return func(yield func(model.Reference) bool) {
		seen := make(map[string]struct{})
		n := 0
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, ok := s.Attr("href")
			if !ok {
				return true
			}
			id, ok := a.DocumentID(href)
			if !ok {
				return true
			}
			title := normalizeSpace(s.Text())
			if title == "" || utf8.RuneCountInString(title) <= minTitle {
				return true
			}
			if _, dup := seen[id]; dup {
				return true
			}
			seen[id] = struct{}{}

			ref := model.Reference{
				ExternalID: id,
				Title:      title,
				URL:        portal.Resolve(a.Base(), href),
			}
			if !yield(ref) {
				return false
			}
			n++
			return n < limit
		})
	}
}

// Collect drains seq. It never returns nil.
func Collect(seq iter.Seq[model.Reference]) []model.Reference {
	out := []model.Reference{}
	for ref := range seq {
		out = append(out, ref)
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
