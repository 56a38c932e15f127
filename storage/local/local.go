// Package local stores objects on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		s, err := NewStorage(cfg.BasePath, cfg.Bucket, cfg.PublicURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Storage implements storage.Storage under basePath/bucket.
type Storage struct {
	root      string
	bucket    string
	publicURL string
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage creates the bucket directory if needed.
func NewStorage(basePath, bucket, publicURL string) (*Storage, error) {
	abs, err := filepath.Abs(filepath.Join(basePath, bucket))
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Storage{root: abs, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// resolve maps an object path to a file under root. Paths are cleaned as
// if rooted so ".." cannot escape the bucket.
func (s *Storage) resolve(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "", fmt.Errorf("storage: invalid object path %q", p)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *Storage) Upload(_ context.Context, p string, reader io.Reader, _ string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		return fmt.Errorf("storage: write file: %w", err)
	}
	return f.Close()
}

func (s *Storage) Delete(_ context.Context, p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

// URL returns PublicURL/bucket/path, or a file:// URL when no public URL
// is configured.
func (s *Storage) URL(_ context.Context, p string) (string, error) {
	if s.publicURL != "" {
		return s.publicURL + "/" + s.bucket + "/" + strings.TrimLeft(p, "/"), nil
	}
	full, err := s.resolve(p)
	if err != nil {
		return "", err
	}
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(full)}
	return u.String(), nil
}
