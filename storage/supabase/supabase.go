// Package supabase stores objects through the Supabase Storage REST API.
package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/linguacast/httpclient"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderSupabase, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		s, err := NewStorage(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Storage implements storage.Storage against {url}/storage/v1.
type Storage struct {
	client  *httpclient.Client
	baseURL string
	bucket  string
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage authenticates every request with cfg.Key.
func NewStorage(cfg storage.Config) (*Storage, error) {
	return newStorage(cfg, nil)
}

func newStorage(cfg storage.Config, transport http.RoundTripper) (*Storage, error) {
	base := strings.TrimRight(cfg.URL, "/") + "/storage/v1"
	client, err := httpclient.New(httpclient.Config{
		BaseURL:   base,
		Timeout:   cfg.Timeout,
		Auth:      httpclient.SupabaseAuth(cfg.Key),
		Transport: transport,
	}.Resilient("supabase-storage"))
	if err != nil {
		return nil, fmt.Errorf("storage: supabase client: %w", err)
	}
	return &Storage{client: client, baseURL: base, bucket: cfg.Bucket}, nil
}

func (s *Storage) objectPath(p string) string {
	return "object/" + s.bucket + "/" + strings.TrimLeft(p, "/")
}

// Upload buffers the reader so retries can replay the body.
func (s *Storage) Upload(ctx context.Context, p string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("storage: supabase read body: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   s.objectPath(p),
		Headers: map[string]string{
			"Content-Type": contentType,
			"x-upsert":     "true",
		},
		Body: data,
	})
	if err != nil {
		return fmt.Errorf("storage: supabase upload: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, p string) error {
	_, err := s.client.Do(ctx, httpclient.Request{Method: http.MethodDelete, Path: s.objectPath(p)})
	if err != nil && !httpclient.IsNotFound(err) {
		return fmt.Errorf("storage: supabase delete: %w", err)
	}
	return nil
}

// URL returns the public object URL. The bucket must be public.
func (s *Storage) URL(_ context.Context, p string) (string, error) {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, strings.TrimLeft(p, "/")), nil
}
