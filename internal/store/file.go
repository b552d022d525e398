// Package store writes finished stickers to disk.
package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dmorgan81/stickerbot/internal/log"
)

type File struct {
	Name string
	Data []byte
}

type Writer interface {
	Write(context.Context, File) error
}

// FileWriter writes relative names under Dir, creating it when missing.
// Absolute names are written as given.
type FileWriter struct {
	Dir string
}

func (w *FileWriter) Write(ctx context.Context, file File) error {
	path := file.Name
	if !filepath.IsAbs(path) && w.Dir != "" {
		path = filepath.Join(w.Dir, path)
	}
	log := log.FromContextOrDiscard(ctx).WithGroup("file").With("path", path)
	log.Info("writing", "bytes", len(file.Data))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, file.Data, 0o644)
}
