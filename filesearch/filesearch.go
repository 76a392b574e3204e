// Package filesearch keeps named stores of uploaded documents and answers
// natural-language questions over the files of one store.
//
// A Service combines three collaborators: a Repository holding the store
// manifest, an Uploader moving file bytes to object storage, and an
// Answerer asking a generative model with the store's files as context.
package filesearch

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrStoreNotFound is returned for operations on an unknown store.
	ErrStoreNotFound = errors.New("store not found")

	// ErrStoreExists is returned by Repository.Create for a taken name.
	// Service.CreateStore treats it as success.
	ErrStoreExists = errors.New("store already exists")

	// ErrEmptyStore is returned when searching a store without files.
	ErrEmptyStore = errors.New("store has no files")

	// ErrFileNotFound is returned when the file to upload does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFile is returned for files that are neither PDF, HTML
	// nor plain text.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// FileRecord is one uploaded file.
type FileRecord struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	URI         string    `json:"uri"`
	MIMEType    string    `json:"mimeType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// Store is a named collection of uploaded files.
type Store struct {
	Name    string       `json:"name"`
	Created time.Time    `json:"created"`
	Files   []FileRecord `json:"files"`
}

// StoreSummary is the listing view of a store.
type StoreSummary struct {
	Name       string    `json:"name"`
	Created    time.Time `json:"created"`
	FilesCount int       `json:"filesCount"`
	TotalSize  int64     `json:"totalSize"`
}

// Answer is the model's response to a query over one store.
type Answer struct {
	Query      string `json:"query"`
	Store      string `json:"store"`
	FilesCount int    `json:"filesCount"`
	Response   string `json:"response"`
}

// Summary returns the listing view of s.
func (s *Store) Summary() StoreSummary {
	sum := StoreSummary{Name: s.Name, Created: s.Created, FilesCount: len(s.Files)}
	for _, f := range s.Files {
		sum.TotalSize += f.SizeBytes
	}
	return sum
}

// Repository persists the store manifest.
type Repository interface {
	// Create adds an empty store. For a taken name it returns the existing
	// store together with ErrStoreExists.
	Create(ctx context.Context, name string, created time.Time) (*Store, error)
	Get(ctx context.Context, name string) (*Store, error)
	// List returns every store ordered by name.
	List(ctx context.Context) ([]Store, error)
	AddFile(ctx context.Context, store string, f FileRecord) error
	Delete(ctx context.Context, name string) error
	Close() error
}

// Uploader stores file bytes under object and returns their URI.
type Uploader interface {
	Upload(ctx context.Context, object, mimeType string, r io.Reader) (uri string, err error)
}

// Answerer asks a model to answer query using files as context.
type Answerer interface {
	Answer(ctx context.Context, query string, files []FileRecord) (string, error)
}
