package extract

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/docfetch/acquire/model"
)

var capturePage = template.Must(template.New("capture").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; max-width: 1200px; margin: 0 auto; padding: 20px; }
    table { border-collapse: collapse; width: 100%; margin: 20px 0; }
    table, th, td { border: 1px solid #ddd; }
    th, td { padding: 8px; text-align: left; }
    th { background-color: #f2f2f2; }
    h1, h2, h3, h4 { color: #333; margin-top: 20px; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p><strong>{{.SourceLabel}}:</strong> <a href="{{.Source}}">{{.Source}}</a></p>
  <hr>
  {{.Content}}
</body>
</html>
`))

type captureData struct {
	Lang        string
	Title       string
	SourceLabel string
	Source      string
	Content     template.HTML
}

// HTMLCapture saves the viewer page's main content container as a
// standalone HTML document. Only script and style nodes are removed; inline
// styles, table attributes and embedded images carry the document layout.
type HTMLCapture struct{}

// NewHTMLCapture creates the strategy.
func NewHTMLCapture() *HTMLCapture { return &HTMLCapture{} }

func (h *HTMLCapture) Name() model.Strategy { return model.StrategyHTMLCapture }

func (h *HTMLCapture) Attempt(ctx context.Context, job *Job) (*Artifact, error) {
	html, err := job.Viewer(ctx)
	if err != nil {
		return nil, err
	}
	mk := job.Adapter.Markup()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, inapplicable("parse viewer: %v", err)
	}
	container := doc.Find(mk.Content).First()
	if container.Length() == 0 {
		return nil, inapplicable("no %s container on viewer page", mk.Content)
	}
	container.Find("script, style").Remove()
	clean, err := container.Html()
	if err != nil {
		return nil, inapplicable("serialise %s: %v", mk.Content, err)
	}
	if strings.TrimSpace(clean) == "" {
		return nil, inapplicable("%s container is empty", mk.Content)
	}

	var buf bytes.Buffer
	err = capturePage.Execute(&buf, captureData{
		Lang:        mk.Lang,
		Title:       job.Detail.Title,
		SourceLabel: mk.SourceLabel,
		Source:      job.ViewerURL(),
		Content:     template.HTML(clean),
	})
	if err != nil {
		return nil, fmt.Errorf("extract: render capture: %w", err)
	}

	return &Artifact{
		Strategy:  model.StrategyHTMLCapture,
		Data:      buf.Bytes(),
		SourceURL: job.ViewerURL(),
	}, nil
}
