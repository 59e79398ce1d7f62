package submission

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-formstep/pkg/form"
)

// DirUploader copies local files into a directory. File and association ids
// are sequential per uploader.
type DirUploader struct {
	Dir string

	mu   sync.Mutex
	next int64
}

// NewDirUploader creates the target directory when missing.
func NewDirUploader(dir string) (*DirUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("submission: create upload dir: %w", err)
	}
	return &DirUploader{Dir: dir}, nil
}

// Upload implements Uploader.
func (u *DirUploader) Upload(ctx context.Context, field string, file *form.File) (FileRef, error) {
	if file == nil || file.Path == "" {
		return FileRef{}, fmt.Errorf("submission: %s: file has no local path", field)
	}
	if err := ctx.Err(); err != nil {
		return FileRef{}, err
	}

	src, err := os.Open(file.Path)
	if err != nil {
		return FileRef{}, fmt.Errorf("submission: open %s: %w", file.Path, err)
	}
	defer func() { _ = src.Close() }()

	target := filepath.Join(u.Dir, uuid.NewString()+"-"+file.Name())
	dst, err := os.Create(target)
	if err != nil {
		return FileRef{}, fmt.Errorf("submission: create %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return FileRef{}, fmt.Errorf("submission: copy %s: %w", file.Name(), err)
	}
	if err := dst.Close(); err != nil {
		return FileRef{}, fmt.Errorf("submission: close %s: %w", target, err)
	}

	u.mu.Lock()
	u.next++
	id := u.next
	u.mu.Unlock()

	return FileRef{FileID: id, AssociationID: id, FileName: file.Name()}, nil
}
