package submission

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formstep/pkg/form"
	"github.com/goliatone/go-formstep/pkg/schema"
)

// PredefinedFieldIDs are the field ids sent to the onboarding account API as
// top-level attributes. Every other id is a custom answer.
var PredefinedFieldIDs = []string{
	"firstName",
	"middleName",
	"firstLastName",
	"secondLastName",
	"rfc",
	"curp",
	"email",
	"phone",
	"address",
	"exteriorNumber",
	"interiorNumber",
	"neighborhood",
	"municipality",
	"city",
	"state",
	"zipCode",
	"country",
	"tradeName",
	"legalRepresentativeName",
}

var predefined = func() map[string]struct{} {
	out := make(map[string]struct{}, len(PredefinedFieldIDs))
	for _, id := range PredefinedFieldIDs {
		out[id] = struct{}{}
	}
	return out
}()

// ErrNoUploader is recorded against file answers when no Uploader is set.
var ErrNoUploader = errors.New("submission: no uploader configured")

// IsPredefined reports whether id belongs to the predefined allow-list.
func IsPredefined(id string) bool {
	_, ok := predefined[id]
	return ok
}

// Split holds a value map partitioned by the allow-list.
type Split struct {
	Predefined map[string]any
	Custom     form.Values
}

// Partition splits values into predefined account fields and custom answers.
func Partition(values form.Values) Split {
	out := Split{
		Predefined: make(map[string]any),
		Custom:     make(form.Values),
	}
	for id, value := range values {
		if IsPredefined(id) {
			out.Predefined[id] = value
			continue
		}
		out.Custom[id] = value
	}
	return out
}

// FileRef identifies an uploaded file once the upload succeeded.
type FileRef struct {
	FileID        int64  `json:"fileId"`
	AssociationID int64  `json:"associationId"`
	FileName      string `json:"fileName"`
}

// Answer wraps a custom answer value, either a plain value or a FileRef.
type Answer struct {
	Value any `json:"value"`
}

// Uploader stores one file for a field and returns its reference.
type Uploader interface {
	Upload(ctx context.Context, field string, file *form.File) (FileRef, error)
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(ctx context.Context, field string, file *form.File) (FileRef, error)

func (f UploaderFunc) Upload(ctx context.Context, field string, file *form.File) (FileRef, error) {
	return f(ctx, field, file)
}

// Upload records the outcome for a single file answer.
type Upload struct {
	Field    string   `json:"field"`
	FileName string   `json:"fileName"`
	FileRef  *FileRef `json:"file,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Failed reports whether the upload did not produce a reference.
func (u Upload) Failed() bool {
	return u.FileRef == nil
}

// CustomPagesAnswers turns custom answers into the `{value: ...}` payload.
// Plain values are wrapped as is. Files are uploaded one by one in field
// order; successful uploads are merged back as FileRefs while failures are
// recorded and left out of the answers. A nil file is skipped.
func CustomPagesAnswers(ctx context.Context, custom form.Values, uploader Uploader) (map[string]Answer, []Upload) {
	answers := make(map[string]Answer, len(custom))
	var uploads []Upload

	ids := make([]string, 0, len(custom))
	for id := range custom {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		value := custom[id]
		file, isFile := value.(*form.File)
		if !isFile {
			answers[id] = Answer{Value: value}
			continue
		}
		if file == nil {
			continue
		}

		record := Upload{Field: id, FileName: file.Name()}
		ref, err := upload(ctx, uploader, id, file)
		if err != nil {
			record.Error = err.Error()
			uploads = append(uploads, record)
			continue
		}
		if ref.FileName == "" {
			ref.FileName = file.Name()
		}
		record.FileRef = &ref
		uploads = append(uploads, record)
		answers[id] = Answer{Value: ref}
	}
	return answers, uploads
}

func upload(ctx context.Context, uploader Uploader, field string, file *form.File) (FileRef, error) {
	if uploader == nil {
		return FileRef{}, ErrNoUploader
	}
	if err := ctx.Err(); err != nil {
		return FileRef{}, err
	}
	return uploader.Upload(ctx, field, file)
}

// Envelope is the complete record produced for a submitted form.
type Envelope struct {
	ID                 string             `json:"id"`
	FormID             string             `json:"formId"`
	ShortID            string             `json:"shortId,omitempty"`
	AccountType        schema.AccountType `json:"accountType,omitempty"`
	Predefined         map[string]any     `json:"predefined"`
	CustomPagesAnswers map[string]Answer  `json:"customPagesAnswers"`
	Uploads            []Upload           `json:"uploads,omitempty"`
	SubmittedAt        time.Time          `json:"submittedAt"`
}

// FailedUploads returns the uploads that did not succeed.
func (e Envelope) FailedUploads() []Upload {
	var out []Upload
	for _, u := range e.Uploads {
		if u.Failed() {
			out = append(out, u)
		}
	}
	return out
}

// Builder assembles envelopes.
type Builder struct {
	uploader Uploader
	now      func() time.Time
	newID    func() string
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithUploader sets the file uploader.
func WithUploader(u Uploader) BuilderOption {
	return func(b *Builder) {
		b.uploader = u
	}
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator overrides the envelope id generator.
func WithIDGenerator(fn func() string) BuilderOption {
	return func(b *Builder) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// NewBuilder returns a Builder that stamps envelopes with random UUIDs.
func NewBuilder(options ...BuilderOption) *Builder {
	b := &Builder{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build partitions values, uploads files and returns the envelope. Failed
// uploads do not abort the build; inspect Envelope.FailedUploads.
func (b *Builder) Build(ctx context.Context, s schema.FormSchema, shortID string, values form.Values) (Envelope, error) {
	if err := ctx.Err(); err != nil {
		return Envelope{}, fmt.Errorf("submission: build: %w", err)
	}
	split := Partition(values)
	answers, uploads := CustomPagesAnswers(ctx, split.Custom, b.uploader)
	return Envelope{
		ID:                 b.newID(),
		FormID:             s.ID,
		ShortID:            shortID,
		AccountType:        s.AccountType,
		Predefined:         split.Predefined,
		CustomPagesAnswers: answers,
		Uploads:            uploads,
		SubmittedAt:        b.now().UTC(),
	}, nil
}
