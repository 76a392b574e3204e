package filesearch

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

const (
	mimePDF  = "application/pdf"
	mimeText = "text/plain"
)

func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// newSanitizer cleans uploaded HTML before conversion. Embedded data: images
// and active content have no place in a retrieval index.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	return p
}

// kindOf classifies a local file by extension. HTML is uploaded as its
// Markdown rendition, so it reports text/plain with convert set.
func kindOf(path string) (mimeType string, convert bool, ok bool) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return mimePDF, false, true
	case ".html", ".htm":
		return mimeText, true, true
	case ".md", ".txt":
		return mimeText, false, true
	default:
		if t := mime.TypeByExtension(ext); strings.HasPrefix(t, mimeText) {
			return mimeText, false, true
		}
		return "", false, false
	}
}
