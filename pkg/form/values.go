package form

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-formstep/pkg/schema"
)

// Values maps field ids to their current value: a string, a *File, or nil.
// Numeric values set programmatically are accepted as well.
type Values map[string]any

// File is a selected upload. Path is optional and only set when the file
// lives on the local disk.
type File struct {
	Filename    string `json:"fileName"`
	Path        string `json:"path,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Length      int64  `json:"size"`
}

// Name implements validation.FileInfo.
func (f *File) Name() string {
	if f == nil {
		return ""
	}
	return f.Filename
}

// Size implements validation.FileInfo.
func (f *File) Size() int64 {
	if f == nil {
		return 0
	}
	return f.Length
}

// FileFromPath stats a local file and returns a File describing it.
func FileFromPath(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("form: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("form: %s is a directory", path)
	}
	return &File{
		Filename: filepath.Base(path),
		Path:     path,
		Length:   info.Size(),
	}, nil
}

// CreateDefaults returns the initial value map for a schema: nil for file
// fields and an empty string for everything else, one key per field.
func CreateDefaults(s schema.FormSchema) Values {
	out := make(Values)
	for _, step := range s.Steps {
		for _, field := range step.Fields {
			if field.Type == schema.FieldTypeFile {
				out[field.ID] = nil
				continue
			}
			out[field.ID] = ""
		}
	}
	return out
}

// Clone returns a shallow copy of the map. File pointers are copied by value
// so callers cannot mutate the original selection.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for key, value := range v {
		if file, ok := value.(*File); ok && file != nil {
			copied := *file
			out[key] = &copied
			continue
		}
		out[key] = value
	}
	return out
}

// String returns the value as text when it is one; files and nil report
// false.
func (v Values) String(id string) (string, bool) {
	s, ok := v[id].(string)
	return s, ok
}

// File returns the selected file for id, if any.
func (v Values) File(id string) (*File, bool) {
	f, ok := v[id].(*File)
	return f, ok && f != nil
}
