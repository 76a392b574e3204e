// Package model holds the value types shared by every stage of the
// acquisition pipeline: document references, details, extraction results
// and the error taxonomy.
package model

// Credentials identify the portal account. Never persisted by the pipeline.
type Credentials struct {
	Identifier string
	Secret     string
}

// Reference points at one portal document.
type Reference struct {
	ExternalID string `json:"id_doc"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

// Field is one label/value pair from the document's metadata table.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Detail is a Reference plus what the detail page exposes.
type Detail struct {
	Reference
	Metadata []Field `json:"metadata"`
	// PDFURL is empty when the page links no downloadable asset.
	PDFURL string `json:"pdfUrl,omitempty"`
}

// MetadataValue returns the value for label, or "" when absent.
func (d *Detail) MetadataValue(label string) string {
	for _, f := range d.Metadata {
		if f.Label == label {
			return f.Value
		}
	}
	return ""
}

// Strategy names the extraction method that produced an artifact.
type Strategy string

const (
	StrategyDirectPDF   Strategy = "direct_pdf_fetch"
	StrategyRenderedPDF Strategy = "rendered_pdf"
	StrategyHTMLCapture Strategy = "html_capture"
)

// Ext returns the file extension the strategy writes.
func (s Strategy) Ext() string {
	if s == StrategyHTMLCapture {
		return ".html"
	}
	return ".pdf"
}

// Result is the terminal artifact of one download.
type Result struct {
	Reference
	Strategy  Strategy `json:"strategy"`
	Path      string   `json:"downloadPath"`
	Size      int64    `json:"size"`
	Pages     int      `json:"pages,omitempty"`
	SourceURL string   `json:"sourceUrl"`
}
