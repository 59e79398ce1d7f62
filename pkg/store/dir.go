package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const recordExt = ".json"

// DirStore keeps one JSON document per form under a directory.
type DirStore struct {
	base

	dir string
	mu  sync.Mutex
}

// NewDirStore creates dir when missing.
func NewDirStore(dir string, options ...Option) (*DirStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	b, err := newBase(options)
	if err != nil {
		return nil, err
	}
	return &DirStore{base: b, dir: dir}, nil
}

// Dir returns the backing directory.
func (s *DirStore) Dir() string {
	return s.dir
}

func (s *DirStore) Create(ctx context.Context, settings FormSettings) (FormSettings, error) {
	if err := ctx.Err(); err != nil {
		return FormSettings{}, err
	}
	record, err := s.prepare(settings)
	if err != nil {
		return FormSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(record.ID)); err == nil {
		return FormSettings{}, ErrExists
	}
	if _, err := s.findShortID(record.ShortID); err == nil {
		return FormSettings{}, ErrExists
	}
	if err := s.write(record); err != nil {
		return FormSettings{}, err
	}
	s.logger.Info("form settings created", "id", record.ID, "short_id", record.ShortID, "dir", s.dir)
	return record, nil
}

func (s *DirStore) Update(ctx context.Context, settings FormSettings) (FormSettings, error) {
	if err := ctx.Err(); err != nil {
		return FormSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, err := s.read(s.path(settings.ID))
	if err != nil {
		return FormSettings{}, err
	}
	record := s.touch(previous, settings)
	if err := s.write(record); err != nil {
		return FormSettings{}, err
	}
	s.logger.Info("form settings updated", "id", record.ID, "status", record.Status)
	return record, nil
}

func (s *DirStore) Get(ctx context.Context, id string) (FormSettings, error) {
	if err := ctx.Err(); err != nil {
		return FormSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(s.path(id))
}

func (s *DirStore) GetByShortID(ctx context.Context, shortID string) (FormSettings, error) {
	if err := ctx.Err(); err != nil {
		return FormSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findShortID(shortID)
}

// List returns every record ordered by creation time.
func (s *DirStore) List(ctx context.Context) ([]FormSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.all()
	if err != nil {
		return nil, err
	}
	sortByCreation(out)
	return out, nil
}

func (s *DirStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	s.logger.Info("form settings deleted", "id", id)
	return nil
}

func (s *DirStore) path(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+recordExt)
}

func (s *DirStore) findShortID(shortID string) (FormSettings, error) {
	records, err := s.all()
	if err != nil {
		return FormSettings{}, err
	}
	for _, record := range records {
		if record.ShortID == shortID {
			return record, nil
		}
	}
	return FormSettings{}, ErrNotFound
}

func (s *DirStore) all() ([]FormSettings, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.dir, err)
	}
	out := make([]FormSettings, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != recordExt {
			continue
		}
		record, err := s.read(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable record", "file", entry.Name(), "error", err)
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *DirStore) read(path string) (FormSettings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FormSettings{}, ErrNotFound
		}
		return FormSettings{}, fmt.Errorf("store: read %s: %w", path, err)
	}
	var record FormSettings
	if err := json.Unmarshal(raw, &record); err != nil {
		return FormSettings{}, fmt.Errorf("store: decode %s: %w", path, err)
	}
	return record, nil
}

// write replaces the record atomically through a temp file rename.
func (s *DirStore) write(record FormSettings) error {
	raw, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", record.ID, err)
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", record.ID, err)
	}
	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", record.ID, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", record.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.path(record.ID)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", record.ID, err)
	}
	return nil
}
