package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/docfetch/acquire/model"
)

// RenderedPDF prints the detail page with the browser's own PDF engine.
type RenderedPDF struct {
	Logger *slog.Logger
}

func (r *RenderedPDF) Name() model.Strategy { return model.StrategyRenderedPDF }

func (r *RenderedPDF) Attempt(ctx context.Context, job *Job) (*Artifact, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	u := job.DetailURL()
	if err := job.Page.Navigate(ctx, u); err != nil {
		return nil, fmt.Errorf("extract: open detail for printing: %w", err)
	}
	data, err := job.Page.PrintPDF(ctx)
	if err != nil {
		return nil, inapplicable("print to pdf: %v", err)
	}
	if len(data) == 0 {
		return nil, inapplicable("print to pdf returned no bytes")
	}
	logger.Info("extract: rendered pdf", "url", u, "size", len(data))

	return &Artifact{
		Strategy:  model.StrategyRenderedPDF,
		Data:      data,
		SourceURL: u,
		Pages:     pageCount(data, logger),
	}, nil
}
