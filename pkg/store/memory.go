package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps form settings in process memory.
type MemoryStore struct {
	base

	mu       sync.RWMutex
	settings map[string]FormSettings
	byShort  map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(options ...Option) (*MemoryStore, error) {
	b, err := newBase(options)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		base:     b,
		settings: make(map[string]FormSettings),
		byShort:  make(map[string]string),
	}, nil
}

func (s *MemoryStore) Create(ctx context.Context, settings FormSettings) (FormSettings, error) {
	if err := ctx.Err(); err != nil {
		return FormSettings{}, err
	}
	record, err := s.prepare(settings)
	if err != nil {
		return FormSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.settings[record.ID]; exists {
		return FormSettings{}, ErrExists
	}
	if _, exists := s.byShort[record.ShortID]; exists {
		return FormSettings{}, ErrExists
	}
	s.settings[record.ID] = record
	s.byShort[record.ShortID] = record.ID
	s.logger.Info("form settings created", "id", record.ID, "short_id", record.ShortID)
	return clone(record), nil
}

func (s *MemoryStore) Update(ctx context.Context, settings FormSettings) (FormSettings, error) {
	if err := ctx.Err(); err != nil {
		return FormSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.settings[settings.ID]
	if !ok {
		return FormSettings{}, ErrNotFound
	}
	record := s.touch(previous, settings)
	s.settings[record.ID] = record
	s.logger.Info("form settings updated", "id", record.ID, "status", record.Status)
	return clone(record), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (FormSettings, error) {
	if err := ctx.Err(); err != nil {
		return FormSettings{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.settings[id]
	if !ok {
		return FormSettings{}, ErrNotFound
	}
	return clone(record), nil
}

func (s *MemoryStore) GetByShortID(ctx context.Context, shortID string) (FormSettings, error) {
	if err := ctx.Err(); err != nil {
		return FormSettings{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byShort[shortID]
	if !ok {
		return FormSettings{}, ErrNotFound
	}
	return clone(s.settings[id]), nil
}

// List returns every record ordered by creation time.
func (s *MemoryStore) List(ctx context.Context) ([]FormSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FormSettings, 0, len(s.settings))
	for _, record := range s.settings {
		out = append(out, clone(record))
	}
	sortByCreation(out)
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.settings[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.settings, id)
	delete(s.byShort, record.ShortID)
	s.logger.Info("form settings deleted", "id", id)
	return nil
}

func sortByCreation(records []FormSettings) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
