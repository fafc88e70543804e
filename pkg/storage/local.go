package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/laxmielectronics/site-api/pkg/logger"
	"github.com/laxmielectronics/site-api/pkg/metrics"
)

// LocalStore keeps uploads in a directory on the local filesystem
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed. An empty dir means a laxmi-uploads
// directory under the OS temp dir.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "laxmi-uploads")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create attachment dir: %w", err)
	}

	logger.Info("Local attachment store initialized", zap.String("dir", dir))
	return &LocalStore{dir: dir}, nil
}

// Name returns the backend name
func (s *LocalStore) Name() string {
	return "local"
}

// Put copies r into a new file. The recorded size is what was written.
func (s *LocalStore) Put(ctx context.Context, filename string, r io.Reader, _ int64) (*Object, error) {
	start := time.Now()
	filename = cleanFilename(filename)
	key := newKey(filename)

	written, err := s.write(key, r)
	s.record(ctx, "put", key, start, err)
	if err != nil {
		return nil, err
	}

	return &Object{Key: key, Filename: filename, ContentType: ContentType(filename), Size: written}, nil
}

func (s *LocalStore) write(key string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(s.path(key), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("failed to create staged file: %w", err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(s.path(key))
		if copyErr != nil {
			return 0, fmt.Errorf("failed to write staged file: %w", copyErr)
		}
		return 0, fmt.Errorf("failed to close staged file: %w", closeErr)
	}
	return n, nil
}

// Open returns the staged file
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	f, err := os.Open(s.path(key))
	s.record(ctx, "open", key, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged file: %w", err)
	}
	return f, nil
}

// Delete removes the staged file. Deleting a missing key is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		err = nil
	}
	s.record(ctx, "delete", key, start, err)
	if err != nil {
		return fmt.Errorf("failed to delete staged file: %w", err)
	}
	return nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key))
}

func (s *LocalStore) record(ctx context.Context, operation, key string, start time.Time, err error) {
	status := metrics.StatusLabel(err)
	metrics.AttachmentOperations.WithLabelValues(s.Name(), operation, status).Inc()
	fields := []zap.Field{zap.String("key", key)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.LogAPICall(ctx, "local_storage", operation, status, metrics.MeasureDuration(start), fields...)
}
