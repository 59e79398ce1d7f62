package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sqids/sqids-go"

	"github.com/goliatone/go-formstep/pkg/schema"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("store: form settings not found")
	// ErrExists is returned by Create for a duplicate id or short id.
	ErrExists = errors.New("store: form settings already exist")
)

// Status tracks the publication lifecycle of a form.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// FormSettings is a stored form: its schema plus publication metadata.
type FormSettings struct {
	ID            string            `json:"id"`
	ShortID       string            `json:"shortId"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Status        Status            `json:"status"`
	Active        bool              `json:"active"`
	Hidden        bool              `json:"hidden"`
	PublishedOnce bool              `json:"publishedOnce"`
	Schema        schema.FormSchema `json:"formSchema"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Servable reports whether the form can be filled by end users.
func (f FormSettings) Servable() bool {
	return f.Status == StatusPublished && f.Active
}

// Store persists form settings.
type Store interface {
	Create(ctx context.Context, settings FormSettings) (FormSettings, error)
	Update(ctx context.Context, settings FormSettings) (FormSettings, error)
	Get(ctx context.Context, id string) (FormSettings, error)
	GetByShortID(ctx context.Context, shortID string) (FormSettings, error)
	List(ctx context.Context) ([]FormSettings, error)
	Delete(ctx context.Context, id string) error
}

const (
	shortIDAlphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	defaultMinLength = 8
	maxMinLength     = 255
)

// ErrInvalidMinLength is returned by NewShortIDs for lengths outside 0..255.
var ErrInvalidMinLength = errors.New("store: short id min length must be between 0 and 255")

// ShortIDs issues short, url friendly ids backed by sqids.
type ShortIDs struct {
	encoder *sqids.Sqids
	counter atomic.Uint64
}

// NewShortIDs builds a generator. Zero uses the default length.
func NewShortIDs(minLength int) (*ShortIDs, error) {
	if minLength < 0 || minLength > maxMinLength {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMinLength, minLength)
	}
	if minLength == 0 {
		minLength = defaultMinLength
	}
	encoder, err := sqids.New(sqids.Options{
		Alphabet:  shortIDAlphabet,
		MinLength: uint8(minLength),
	})
	if err != nil {
		return nil, fmt.Errorf("store: short ids: %w", err)
	}
	return &ShortIDs{encoder: encoder}, nil
}

// Next returns a fresh short id.
func (s *ShortIDs) Next() (string, error) {
	salt, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", err
	}
	seed := uint64(time.Now().UTC().UnixNano()) + salt.Uint64() + s.counter.Add(1)
	return s.encoder.Encode([]uint64{seed})
}

// Decode reverses Next, mostly useful to reject malformed ids early.
func (s *ShortIDs) Decode(id string) ([]uint64, bool) {
	numbers := s.encoder.Decode(id)
	if len(numbers) == 0 {
		return nil, false
	}
	// sqids ids are canonical: re-encoding must give back the same string.
	again, err := s.encoder.Encode(numbers)
	if err != nil || again != id {
		return nil, false
	}
	return numbers, true
}

// Option configures the store implementations.
type Option func(*base)

// WithLogger sets the logger used for store events.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithShortIDs overrides the short id generator.
func WithShortIDs(ids *ShortIDs) Option {
	return func(b *base) {
		if ids != nil {
			b.ids = ids
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

type base struct {
	logger *slog.Logger
	ids    *ShortIDs
	now    func() time.Time
}

func newBase(options []Option) (base, error) {
	b := base{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&b)
		}
	}
	if b.ids == nil {
		ids, err := NewShortIDs(defaultMinLength)
		if err != nil {
			return base{}, err
		}
		b.ids = ids
	}
	return b, nil
}

// prepare fills the generated fields of a new record.
func (b base) prepare(settings FormSettings) (FormSettings, error) {
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	if settings.ShortID == "" {
		shortID, err := b.ids.Next()
		if err != nil {
			return FormSettings{}, fmt.Errorf("store: short id: %w", err)
		}
		settings.ShortID = shortID
	}
	if settings.Status == "" {
		settings.Status = StatusDraft
	}
	if settings.Status == StatusPublished {
		settings.PublishedOnce = true
	}
	now := b.now().UTC()
	settings.CreatedAt = now
	settings.UpdatedAt = now
	settings.Schema = settings.Schema.Clone()
	return settings, nil
}

func (b base) touch(previous, next FormSettings) FormSettings {
	next.ID = previous.ID
	next.ShortID = previous.ShortID
	next.CreatedAt = previous.CreatedAt
	next.UpdatedAt = b.now().UTC()
	next.PublishedOnce = previous.PublishedOnce || next.Status == StatusPublished
	next.Schema = next.Schema.Clone()
	return next
}

func clone(settings FormSettings) FormSettings {
	settings.Schema = settings.Schema.Clone()
	return settings
}
