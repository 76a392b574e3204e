package filesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockRetry = 50 * time.Millisecond

// JSONRepository keeps the manifest in one JSON file: an object mapping
// store names to stores. Every mutation re-reads the file under an
// advisory lock held on a sibling .lock file, applies the change and
// replaces the file atomically, so concurrent processes merge rather than
// overwrite each other.
type JSONRepository struct {
	path string
}

// NewJSONRepository returns a repository backed by the manifest at path.
// The file and its directory are created on first write.
func NewJSONRepository(path string) *JSONRepository {
	return &JSONRepository{path: path}
}

type manifest map[string]*Store

func (r *JSONRepository) Create(ctx context.Context, name string, created time.Time) (*Store, error) {
	var out *Store
	err := r.update(ctx, func(m manifest) error {
		if st, ok := m[name]; ok {
			out = st
			return ErrStoreExists
		}
		st := &Store{Name: name, Created: created, Files: []FileRecord{}}
		m[name] = st
		out = st
		return nil
	})
	return out, err
}

func (r *JSONRepository) Get(ctx context.Context, name string) (*Store, error) {
	m, err := r.read()
	if err != nil {
		return nil, err
	}
	st, ok := m[name]
	if !ok {
		return nil, ErrStoreNotFound
	}
	return st, nil
}

func (r *JSONRepository) List(ctx context.Context) ([]Store, error) {
	m, err := r.read()
	if err != nil {
		return nil, err
	}
	out := make([]Store, 0, len(m))
	for _, st := range m {
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b Store) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *JSONRepository) AddFile(ctx context.Context, store string, f FileRecord) error {
	return r.update(ctx, func(m manifest) error {
		st, ok := m[store]
		if !ok {
			return ErrStoreNotFound
		}
		st.Files = append(st.Files, f)
		return nil
	})
}

func (r *JSONRepository) Delete(ctx context.Context, name string) error {
	return r.update(ctx, func(m manifest) error {
		if _, ok := m[name]; !ok {
			return ErrStoreNotFound
		}
		delete(m, name)
		return nil
	})
}

func (r *JSONRepository) Close() error { return nil }

func (r *JSONRepository) read() (manifest, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m := manifest{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", r.path, err)
	}
	for name, st := range m {
		if st.Name == "" {
			st.Name = name
		}
		if st.Files == nil {
			st.Files = []FileRecord{}
		}
	}
	return m, nil
}

// update applies fn to the current manifest under the lock. An fn error
// leaves the file untouched; ErrStoreExists is passed through to the caller
// the same way.
func (r *JSONRepository) update(ctx context.Context, fn func(manifest) error) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("manifest dir: %w", err)
	}
	// a fresh descriptor per update so goroutines of one process exclude
	// each other as well
	fl := flock.New(r.path + ".lock")
	locked, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock manifest: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock manifest: %w", ctx.Err())
	}
	defer fl.Close()

	m, err := r.read()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return r.write(m)
}

func (r *JSONRepository) write(m manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".manifest-*.part")
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(name, r.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}
