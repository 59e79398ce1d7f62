package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Loader fetches raw schema documents.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures the default loader.
type LoaderOptions struct {
	FileSystem     fs.FS
	HTTPClient     *http.Client
	AllowHTTP      bool
	RequestTimeout time.Duration
}

// LoaderOption mutates LoaderOptions.
type LoaderOption func(*LoaderOptions)

// WithFileSystem enables SourceKindFS lookups against files.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(o *LoaderOptions) {
		o.FileSystem = files
	}
}

// WithHTTPClient enables URL sources using the provided client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(o *LoaderOptions) {
		o.HTTPClient = client
		o.AllowHTTP = client != nil
	}
}

// WithHTTPFallback enables URL sources with a default client.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(o *LoaderOptions) {
		o.AllowHTTP = true
		o.RequestTimeout = timeout
	}
}

type loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// NewLoader constructs a Loader that reads files, fs.FS entries and, when
// enabled, HTTP URLs.
func NewLoader(options ...LoaderOption) Loader {
	var opts LoaderOptions
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	var client *http.Client
	switch {
	case opts.HTTPClient != nil:
		clone := *opts.HTTPClient
		if opts.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = opts.RequestTimeout
		}
		client = &clone
	case opts.AllowHTTP:
		client = &http.Client{Timeout: opts.RequestTimeout}
	}

	return &loader{
		fs:        opts.FileSystem,
		http:      client,
		allowHTTP: client != nil,
		timeout:   opts.RequestTimeout,
	}
}

// Load fetches a document from the provided source and wraps it in a Document.
func (l *loader) Load(ctx context.Context, src Source) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case SourceKindFile:
		data, err = loadFile(src.Location())
	case SourceKindFS:
		data, err = loadFromFS(l.fs, src.Location())
	case SourceKindURL:
		if !l.allowHTTP {
			return Document{}, errors.New("schema loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = errors.New("schema loader: unsupported source kind")
	}
	if err != nil {
		return Document{}, fmt.Errorf("schema loader: %s: %w", src.Location(), err)
	}

	return NewDocument(src, data)
}

func loadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

func loadFromFS(files fs.FS, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("fs path is required")
	}
	if files == nil {
		return nil, errors.New("fs is nil")
	}
	return fs.ReadFile(files, name)
}

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
