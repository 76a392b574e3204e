// Package detail reads a document's detail page: title, metadata table and
// an optional directly linked PDF.
package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/docfetch/acquire/internal/browser"
	"github.com/hazyhaar/docfetch/acquire/internal/portal"
	"github.com/hazyhaar/docfetch/acquire/model"
)

// Fetch navigates to the detail page of id and parses it. Navigate returns
// once the network is idle, so an empty title at that point means the
// document does not exist.
func Fetch(ctx context.Context, page browser.Page, a portal.Adapter, id string) (*model.Detail, error) {
	u := a.DetailURL(id)
	if err := page.Navigate(ctx, u); err != nil {
		return nil, fmt.Errorf("detail: open %s: %w", id, err)
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("detail: %w", err)
	}
	return Parse(html, id, u, a)
}

// Parse extracts a Detail from rendered detail-page markup.
func Parse(html, id, pageURL string, a portal.Adapter) (*model.Detail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("detail: parse %s: %w", id, err)
	}
	mk := a.Markup()

	title := strings.Join(strings.Fields(doc.Find(mk.Title).First().Text()), " ")
	if title == "" {
		return nil, fmt.Errorf("detail: id_doc=%s: %w", id, model.ErrDocumentNotFound)
	}

	return &model.Detail{
		Reference: model.Reference{ExternalID: id, Title: title, URL: pageURL},
		Metadata:  metadata(doc, mk.MetadataRows),
		PDFURL:    assetLink(doc, mk.AssetLinks, a),
	}, nil
}

// metadata reads label/value rows of the first table matched by rows.
// The label is the first cell without its colon, the value the last data
// cell; single-cell rows are headings and skipped. A repeated label keeps
// its position and takes the later value.
func metadata(doc *goquery.Document, rows string) []model.Field {
	out := []model.Field{}
	all := doc.Find(rows)
	if all.Length() == 0 {
		return out
	}
	table := all.First().Closest("table")

	index := make(map[string]int)
	all.Each(func(_ int, tr *goquery.Selection) {
		if table.Length() > 0 && !tr.Closest("table").IsSelection(table) {
			return
		}
		cells := tr.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := cellText(cells.First())
		label = strings.TrimSpace(strings.TrimSuffix(label, ":"))
		value := cellText(tr.Find("td").Last())
		if label == "" || value == "" {
			return
		}
		if i, ok := index[label]; ok {
			out[i].Value = value
			return
		}
		index[label] = len(out)
		out = append(out, model.Field{Label: label, Value: value})
	})
	return out
}

func assetLink(doc *goquery.Document, selector string, a portal.Adapter) string {
	var link string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.TrimSpace(href) == "" {
			return true
		}
		link = portal.Resolve(a.Base(), href)
		return false
	})
	return link
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
