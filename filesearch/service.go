package filesearch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// Config holds the Service collaborators.
type Config struct {
	Repository Repository
	Uploader   Uploader
	Answerer   Answerer
	Logger     *slog.Logger
	Now        func() time.Time
}

// Service implements the store operations.
type Service struct {
	repo     Repository
	uploader Uploader
	answerer Answerer
	logger   *slog.Logger
	now      func() time.Time
	md       *converter.Converter
	sanitize *bluemonday.Policy
}

// New creates a Service. Uploader and Answerer may be nil for callers that
// only read or manage the manifest; the operations needing them then fail.
func New(cfg Config) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("filesearch: repository is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		repo:     cfg.Repository,
		uploader: cfg.Uploader,
		answerer: cfg.Answerer,
		logger:   cfg.Logger,
		now:      cfg.Now,
		md:       newConverter(),
		sanitize: newSanitizer(),
	}, nil
}

// Close closes the repository.
func (s *Service) Close() error { return s.repo.Close() }

// CreateStore creates the named store, or returns it if it already exists.
func (s *Service) CreateStore(ctx context.Context, name string) (*Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("filesearch: store name is required")
	}
	st, err := s.repo.Create(ctx, name, s.now().UTC())
	switch {
	case errors.Is(err, ErrStoreExists):
		s.logger.Info("filesearch: store exists", "store", name)
		return st, nil
	case err != nil:
		return nil, fmt.Errorf("filesearch: create %q: %w", name, err)
	}
	s.logger.Info("filesearch: store created", "store", name)
	return st, nil
}

// UploadFile uploads the file at path into store. displayName defaults to
// the file's base name.
func (s *Service) UploadFile(ctx context.Context, path, store, displayName string) (*FileRecord, error) {
	if _, err := s.repo.Get(ctx, store); err != nil {
		return nil, fmt.Errorf("filesearch: upload to %q: %w", store, err)
	}

	mimeType, convert, ok := kindOf(path)
	if !ok {
		return nil, fmt.Errorf("filesearch: %s: %w", path, ErrUnsupportedFile)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("filesearch: %s: %w", path, ErrFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("filesearch: read %s: %w", path, err)
	}

	if convert {
		md, err := s.md.ConvertString(s.sanitize.Sanitize(string(data)))
		if err != nil {
			return nil, fmt.Errorf("filesearch: convert %s: %w", path, err)
		}
		data = []byte(md)
	}

	if s.uploader == nil {
		return nil, errors.New("filesearch: no uploader configured")
	}

	if displayName == "" {
		displayName = filepath.Base(path)
	}
	object := store + "/" + uuid.NewString() + "-" + filepath.Base(path)
	if convert {
		object = strings.TrimSuffix(object, filepath.Ext(object)) + ".md"
	}

	uri, err := s.uploader.Upload(ctx, object, mimeType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("filesearch: upload %s: %w", path, err)
	}

	rec := FileRecord{
		Name:        object,
		DisplayName: displayName,
		URI:         uri,
		MIMEType:    mimeType,
		SizeBytes:   int64(len(data)),
		UploadedAt:  s.now().UTC(),
	}
	if err := s.repo.AddFile(ctx, store, rec); err != nil {
		return nil, fmt.Errorf("filesearch: record %s: %w", path, err)
	}

	s.logger.Info("filesearch: uploaded",
		"store", store,
		"file", displayName,
		"mime", mimeType,
		"bytes", rec.SizeBytes,
	)
	return &rec, nil
}

// ListStores returns a summary of every store, ordered by name.
func (s *Service) ListStores(ctx context.Context) ([]StoreSummary, error) {
	stores, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("filesearch: list: %w", err)
	}
	out := make([]StoreSummary, 0, len(stores))
	for i := range stores {
		out = append(out, stores[i].Summary())
	}
	return out, nil
}

// ListFiles returns the files of store in upload order.
func (s *Service) ListFiles(ctx context.Context, store string) ([]FileRecord, error) {
	st, err := s.repo.Get(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("filesearch: files of %q: %w", store, err)
	}
	if st.Files == nil {
		return []FileRecord{}, nil
	}
	return st.Files, nil
}

// Search asks the model query with every file of store in context.
func (s *Service) Search(ctx context.Context, query, store string) (*Answer, error) {
	st, err := s.repo.Get(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("filesearch: search %q: %w", store, err)
	}
	if len(st.Files) == 0 {
		return nil, fmt.Errorf("filesearch: search %q: %w", store, ErrEmptyStore)
	}
	if s.answerer == nil {
		return nil, errors.New("filesearch: no answerer configured")
	}

	s.logger.Info("filesearch: searching", "store", store, "files", len(st.Files))
	text, err := s.answerer.Answer(ctx, query, st.Files)
	if err != nil {
		return nil, fmt.Errorf("filesearch: answer: %w", err)
	}
	return &Answer{
		Query:      query,
		Store:      store,
		FilesCount: len(st.Files),
		Response:   text,
	}, nil
}

// DeleteStore removes the store from the manifest. Uploaded objects are
// left in place.
func (s *Service) DeleteStore(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("filesearch: delete %q: %w", name, err)
	}
	s.logger.Info("filesearch: store deleted", "store", name)
	return nil
}
