// Package acquire drives one invocation against the document portal:
// attach to the browser, make sure the session is authenticated, then list,
// describe or download documents.
//
// Every operation runs the same state machine:
//
//	Idle → Authenticating → (Listing | DetailFetching) → [Extracting] → Done | Failed
//
// The browser connection is acquired when an operation starts and released
// on every exit path. The browser process itself is never closed.
package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hazyhaar/docfetch/acquire/internal/browser"
	"github.com/hazyhaar/docfetch/acquire/internal/detail"
	"github.com/hazyhaar/docfetch/acquire/internal/extract"
	"github.com/hazyhaar/docfetch/acquire/internal/listing"
	"github.com/hazyhaar/docfetch/acquire/internal/portal"
	"github.com/hazyhaar/docfetch/acquire/internal/session"
	"github.com/hazyhaar/docfetch/acquire/model"
)

var tracer = otel.Tracer("docfetch/acquire")

// State is a step of one invocation.
type State string

const (
	StateIdle           State = "idle"
	StateAuthenticating State = "authenticating"
	StateListing        State = "listing"
	StateDetailFetching State = "detail_fetching"
	StateExtracting     State = "extracting"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Config configures an Acquirer.
type Config struct {
	// BaseURL of the portal. Default: portal.DefaultBaseURL.
	BaseURL string

	RemoteURL         string
	NavigationTimeout time.Duration
	NavigationRate    float64
	ResourceBlocking  []string

	// DownloadDir receives artifacts when no explicit output is given.
	DownloadDir     string
	DownloadTimeout time.Duration
	UserAgent       string

	Credentials model.Credentials
	Logger      *slog.Logger
}

// Connector attaches to a browser and hands back the page plus its release
// function.
type Connector func(ctx context.Context, cfg browser.Config) (browser.Page, func() error, error)

// Option customises an Acquirer.
type Option func(*Acquirer)

// WithConnector replaces the rod-backed browser connection.
func WithConnector(c Connector) Option {
	return func(a *Acquirer) { a.connect = c }
}

// WithAdapters sets the portal markup versions to choose from. The first
// one is the fallback when none matches the rendered home page.
func WithAdapters(adapters ...portal.Adapter) Option {
	return func(a *Acquirer) { a.adapters = adapters }
}

// WithStrategies overrides the extraction chain.
func WithStrategies(s ...extract.Strategy) Option {
	return func(a *Acquirer) { a.strategies = s }
}

// WithTransitionHook is called on every state change.
func WithTransitionHook(fn func(runID string, from, to State)) Option {
	return func(a *Acquirer) { a.onTransition = fn }
}

// Acquirer runs portal operations. It is not safe for concurrent use:
// each operation owns the browser tab for its whole duration.
type Acquirer struct {
	cfg          Config
	adapters     []portal.Adapter
	strategies   []extract.Strategy
	connect      Connector
	onTransition func(runID string, from, to State)
	logger       *slog.Logger
}

// New creates an Acquirer.
func New(cfg Config, opts ...Option) (*Acquirer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	a := &Acquirer{cfg: cfg, connect: connectRod, logger: cfg.Logger}
	for _, o := range opts {
		o(a)
	}
	if len(a.adapters) == 0 {
		b, err := portal.NewBudstandart(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("acquire: portal base url: %w", err)
		}
		a.adapters = []portal.Adapter{b}
	}
	if len(a.strategies) == 0 {
		a.strategies = []extract.Strategy{
			extract.NewDirectPDF(extract.DirectConfig{
				Timeout:   cfg.DownloadTimeout,
				UserAgent: cfg.UserAgent,
				Logger:    cfg.Logger,
			}),
			&extract.RenderedPDF{Logger: cfg.Logger},
			extract.NewHTMLCapture(),
		}
	}
	return a, nil
}

func connectRod(ctx context.Context, cfg browser.Config) (browser.Page, func() error, error) {
	c, err := browser.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return c.Tab(), c.Release, nil
}

// Search lists documents matching query, at most limit of them. A limit
// of zero or less lists nothing.
func (a *Acquirer) Search(ctx context.Context, query string, limit int) ([]model.Reference, error) {
	var out []model.Reference
	err := a.run(ctx, "search", func(ctx context.Context, r *run) error {
		r.transition(StateListing)
		if err := r.page.Navigate(ctx, r.adapter.SearchURL(query)); err != nil {
			return fmt.Errorf("acquire: search %q: %w", query, err)
		}
		html, err := r.page.HTML(ctx)
		if err != nil {
			return fmt.Errorf("acquire: search: %w", err)
		}
		out = listing.Collect(listing.Parse(html, limit, r.adapter, listing.Search))
		r.logger.Info("acquire: search results", "query", query, "count", len(out))
		return nil
	})
	return out, err
}

// Recent lists the newest documents from the portal landing page.
func (a *Acquirer) Recent(ctx context.Context, limit int) ([]model.Reference, error) {
	var out []model.Reference
	err := a.run(ctx, "recent", func(ctx context.Context, r *run) error {
		r.transition(StateListing)
		if err := r.page.Navigate(ctx, r.adapter.HomeURL()); err != nil {
			return fmt.Errorf("acquire: recent: %w", err)
		}
		html, err := r.page.HTML(ctx)
		if err != nil {
			return fmt.Errorf("acquire: recent: %w", err)
		}
		out = listing.Collect(listing.Parse(html, limit, r.adapter, listing.Recent))
		r.logger.Info("acquire: recent documents", "count", len(out))
		return nil
	})
	return out, err
}

// Document returns the detail page data of id.
func (a *Acquirer) Document(ctx context.Context, id string) (*model.Detail, error) {
	var out *model.Detail
	err := a.run(ctx, "document", func(ctx context.Context, r *run) error {
		r.transition(StateDetailFetching)
		d, err := detail.Fetch(ctx, r.page, r.adapter, id)
		if err != nil {
			return err
		}
		out = d
		return nil
	})
	return out, err
}

// Download materialises document id on local storage. output overrides
// the path derived from the title; a directory keeps the derived name.
func (a *Acquirer) Download(ctx context.Context, id, output string) (*model.Result, error) {
	var out *model.Result
	err := a.run(ctx, "download", func(ctx context.Context, r *run) error {
		r.transition(StateDetailFetching)
		d, err := detail.Fetch(ctx, r.page, r.adapter, id)
		if err != nil {
			return err
		}

		r.transition(StateExtracting)
		p := extract.New(extract.Config{
			Strategies: a.strategies,
			Verifier:   r.session,
			Store:      extract.Store{Dir: a.cfg.DownloadDir},
			Logger:     r.logger,
		})
		res, err := p.Run(ctx, &extract.Job{Page: r.page, Adapter: r.adapter, Detail: d}, output)
		if err != nil {
			return err
		}
		r.span.SetAttributes(
			attribute.String("docfetch.strategy", string(res.Strategy)),
			attribute.Int64("docfetch.size", res.Size),
		)
		out = res
		return nil
	})
	return out, err
}

// run is the state of one invocation.
type run struct {
	id      string
	state   State
	page    browser.Page
	adapter portal.Adapter
	session *session.Manager
	logger  *slog.Logger
	span    trace.Span
	hook    func(runID string, from, to State)
}

func (r *run) transition(to State) {
	from := r.state
	r.state = to
	r.logger.Info("acquire: state", "from", string(from), "to", string(to))
	r.span.AddEvent(string(to))
	if r.hook != nil {
		r.hook(r.id, from, to)
	}
}

// run acquires the browser, authenticates, executes body and releases the
// browser whatever happens.
func (a *Acquirer) run(ctx context.Context, op string, body func(context.Context, *run) error) (err error) {
	id := newRunID()
	ctx, span := tracer.Start(ctx, "acquire."+op, trace.WithAttributes(attribute.String("docfetch.run_id", id)))
	defer span.End()

	r := &run{
		id:     id,
		state:  StateIdle,
		logger: a.logger.With("run_id", id, "op", op),
		span:   span,
		hook:   a.onTransition,
	}
	defer func() {
		if err != nil {
			r.logger.Error("acquire: failed", "state", string(r.state), "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, op+" failed")
			r.transition(StateFailed)
			return
		}
		r.transition(StateDone)
	}()

	r.transition(StateAuthenticating)
	page, release, err := a.connect(ctx, browser.Config{
		RemoteURL:         a.cfg.RemoteURL,
		NavigationTimeout: a.cfg.NavigationTimeout,
		NavigationRate:    a.cfg.NavigationRate,
		ResourceBlocking:  a.cfg.ResourceBlocking,
		Logger:            a.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if rerr := release(); rerr != nil {
			r.logger.Warn("acquire: release browser", "error", rerr)
		}
	}()
	r.page = page

	r.adapter, err = a.selectAdapter(ctx, page)
	if err != nil {
		return err
	}
	r.session = session.New(r.adapter, r.logger)
	if err := r.session.EnsureAuthenticated(ctx, page, a.cfg.Credentials); err != nil {
		return err
	}

	return body(ctx, r)
}

// selectAdapter probes the home page when several markup versions are
// registered.
func (a *Acquirer) selectAdapter(ctx context.Context, page browser.Page) (portal.Adapter, error) {
	if len(a.adapters) == 1 {
		return a.adapters[0], nil
	}
	if err := page.Navigate(ctx, a.adapters[0].HomeURL()); err != nil {
		return nil, fmt.Errorf("acquire: probe portal: %w", err)
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire: probe portal: %w", err)
	}
	ad, ok := portal.Select(html, a.adapters...)
	if !ok {
		a.logger.Warn("acquire: no adapter matched the portal markup", "fallback", ad.Name())
	}
	return ad, nil
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
