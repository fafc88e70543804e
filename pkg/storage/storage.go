// Package storage stages uploaded files between the multipart request and
// the outgoing admin notification.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/laxmielectronics/site-api/config"
	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
)

// Store holds staged uploads until the relay finishes
type Store interface {
	Put(ctx context.Context, filename string, r io.Reader, size int64) (*Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Name() string
}

// Object describes one staged upload
type Object struct {
	Key         string
	Filename    string
	ContentType string
	Size        int64
}

var allowedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".csv": true, ".txt": true, ".png": true, ".jpg": true, ".jpeg": true,
	".dwg": true, ".dxf": true, ".step": true, ".stp": true, ".igs": true,
	".iges": true, ".stl": true, ".zip": true,
}

// New builds the configured store
func New(cfg config.AttachmentsConfig) (Store, error) {
	switch cfg.Storage {
	case "local", "":
		store, err := NewLocalStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		store, err := NewS3Store(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown attachment storage %q", cfg.Storage)
	}
}

// ValidateUpload checks the file extension and size against the limit
func ValidateUpload(filename string, size, maxBytes int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return apperrors.InvalidInputError(filename, "file type is not allowed")
	}
	if size <= 0 {
		return apperrors.InvalidInputError(filename, "file is empty")
	}
	if maxBytes > 0 && size > maxBytes {
		return apperrors.InvalidInputError(filename, fmt.Sprintf("file too large: %d bytes (max %d bytes)", size, maxBytes))
	}
	return nil
}

// ContentType guesses the MIME type from the extension
func ContentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// newKey returns a collision-free key that keeps the original extension
func newKey(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// cleanFilename strips any directory the browser sent along with the name
func cleanFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}
