package extract

import (
	"testing"

	"github.com/hazyhaar/docfetch/acquire/internal/portal"
)

func TestFramePDF(t *testing.T) {
	b, _ := portal.NewBudstandart("https://portal.test")
	mk := b.Markup()
	viewer := "https://portal.test/ua/catalog/document.html?id_doc=9"

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"pdf.js viewer with encoded file param",
			`<iframe src="/pdfjs/web/viewer.html?file=%2Fstorage%2Fdocs%2F9.pdf"></iframe>`,
			"https://portal.test/storage/docs/9.pdf",
		},
		{
			"file relative to the frame",
			`<iframe src="/pdfjs/web/viewer.html?file=../../files/9.pdf"></iframe>`,
			"https://portal.test/files/9.pdf",
		},
		{
			"absolute file url",
			`<iframe src="viewer.html?file=https%3A%2F%2Fcdn.test%2F9.pdf&amp;page=1"></iframe>`,
			"https://cdn.test/9.pdf",
		},
		{
			"frame pointing at a pdf",
			`<iframe src="/files/9.PDF"></iframe>`,
			"https://portal.test/files/9.PDF",
		},
		{"frame without file", `<iframe src="/ads/banner.html"></iframe>`, ""},
		{"no frame", `<div id="bsdoctext">text</div>`, ""},
		{"empty src", `<iframe src=" "></iframe>`, ""},
	}
	for _, tt := range tests {
		if got := FramePDF("<html><body>"+tt.html+"</body></html>", viewer, mk); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestIsPDF(t *testing.T) {
	if !isPDF([]byte("\n%PDF-1.7")) {
		t.Error("leading whitespace should be tolerated")
	}
	if isPDF([]byte("<html>")) {
		t.Error("html is not a pdf")
	}
}
