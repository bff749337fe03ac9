package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"winter-stage/internal/stage"

	"github.com/ncruces/zenity"
)

// ImageExtensions is the declared accept filter for the file picker and for
// dropped files. Content is not inspected.
var ImageExtensions = []string{".gif", ".png", ".jpg", ".jpeg", ".webp", ".bmp"}

// Picker asks the user for an image. A nil file with a nil error means the
// user cancelled.
type Picker interface {
	Pick(ctx context.Context) (*stage.File, error)
}

// DialogPicker shows the platform's native open dialog.
type DialogPicker struct {
	Title string
}

// Pick implements Picker.
func (p DialogPicker) Pick(ctx context.Context) (*stage.File, error) {
	patterns := make([]string, 0, 2*len(ImageExtensions))
	for _, ext := range ImageExtensions {
		patterns = append(patterns, "*"+ext, "*"+strings.ToUpper(ext))
	}
	name, err := zenity.SelectFile(
		zenity.Context(ctx),
		zenity.Title(p.Title),
		zenity.FileFilters{{Name: "Images", Patterns: patterns}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open dialog: %w", err)
	}
	return ReadFile(name)
}

// Accepts reports whether name passes the image filter.
func Accepts(name string) bool {
	return slices.Contains(ImageExtensions, strings.ToLower(path.Ext(name)))
}

// ReadFile loads a file from disk as a selection.
func ReadFile(name string) (*stage.File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &stage.File{Name: filepath.Base(name), Data: data}, nil
}

// FirstImage returns the first file in fsys accepted by the image filter,
// or nil if there is none.
func FirstImage(fsys fs.FS) (*stage.File, error) {
	if fsys == nil {
		return nil, nil
	}
	var found string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && Accepts(p) {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan dropped files: %w", err)
	}
	if found == "" {
		return nil, nil
	}
	data, err := fs.ReadFile(fsys, found)
	if err != nil {
		return nil, fmt.Errorf("read dropped %s: %w", found, err)
	}
	return &stage.File{Name: path.Base(found), Data: data}, nil
}
