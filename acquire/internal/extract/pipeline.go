package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hazyhaar/docfetch/acquire/model"
)

var tracer = otel.Tracer("docfetch/extract")

// Config configures a Pipeline.
type Config struct {
	// Strategies in trial order. Default: DirectPDF, RenderedPDF, HTMLCapture.
	Strategies []Strategy
	// Verifier is consulted before falling back to the next strategy.
	// Nil skips re-verification.
	Verifier Verifier
	Store    Store
	Logger   *slog.Logger
}

// Pipeline runs strategies in order until one produces an artifact.
type Pipeline struct {
	strategies []Strategy
	verifier   Verifier
	store      Store
	logger     *slog.Logger
}

// DefaultStrategies returns the standard chain.
func DefaultStrategies(logger *slog.Logger) []Strategy {
	return []Strategy{
		NewDirectPDF(DirectConfig{Logger: logger}),
		&RenderedPDF{Logger: logger},
		NewHTMLCapture(),
	}
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = DefaultStrategies(cfg.Logger)
	}
	return &Pipeline{
		strategies: cfg.Strategies,
		verifier:   cfg.Verifier,
		store:      cfg.Store,
		logger:     cfg.Logger,
	}
}

// Run acquires job's document and writes it to disk. output overrides the
// derived path (see Store.Target). An inapplicable strategy hands over to
// the next one only after the session is confirmed alive; every other
// strategy error is returned as is. When no strategy applies the error is
// model.ErrContentNotExtractable.
func (p *Pipeline) Run(ctx context.Context, job *Job, output string) (*model.Result, error) {
	id := job.Detail.ExternalID
	for _, s := range p.strategies {
		art, err := p.attempt(ctx, s, job)
		if err == nil {
			return p.store.save(job, art, output, p.logger)
		}
		if !errors.Is(err, model.ErrInapplicable) {
			p.logger.Error("extract: strategy failed", "id_doc", id, "strategy", string(s.Name()), "error", err)
			return nil, err
		}
		p.logger.Info("extract: strategy inapplicable", "id_doc", id, "strategy", string(s.Name()), "reason", err.Error())

		if p.verifier != nil {
			if err := p.verifier.Verify(ctx, job.Page); err != nil {
				p.logger.Warn("extract: session lost between strategies", "id_doc", id, "error", err)
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("extract: id_doc=%s: %w", id, model.ErrContentNotExtractable)
}

func (p *Pipeline) attempt(ctx context.Context, s Strategy, job *Job) (*Artifact, error) {
	ctx, span := tracer.Start(ctx, "extract."+string(s.Name()))
	defer span.End()
	span.SetAttributes(attribute.String("docfetch.id_doc", job.Detail.ExternalID))

	art, err := s.Attempt(ctx, job)
	if err == nil && (art == nil || len(art.Data) == 0) {
		err = inapplicable("%s produced no data", s.Name())
	}
	switch {
	case errors.Is(err, model.ErrInapplicable):
		span.SetAttributes(attribute.Bool("docfetch.inapplicable", true))
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "strategy failed")
	default:
		span.SetAttributes(attribute.Int("docfetch.bytes", len(art.Data)))
	}
	if err != nil {
		return nil, err
	}
	if art.Strategy == "" {
		art.Strategy = s.Name()
	}
	return art, nil
}

func (s Store) save(job *Job, art *Artifact, output string, logger *slog.Logger) (*model.Result, error) {
	path := s.Target(output, job.Detail.Title, art.Strategy.Ext())
	size, err := s.Write(path, art.Data)
	if err != nil {
		return nil, err
	}
	logger.Info("extract: saved", "id_doc", job.Detail.ExternalID,
		"strategy", string(art.Strategy), "path", path, "size", size)
	return &model.Result{
		Reference: job.Detail.Reference,
		Strategy:  art.Strategy,
		Path:      path,
		Size:      size,
		Pages:     art.Pages,
		SourceURL: art.SourceURL,
	}, nil
}
