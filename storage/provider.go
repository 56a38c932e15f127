package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/kbukum/linguacast/provider"
)

// UploadRequest describes one object upload.
type UploadRequest struct {
	Path        string
	Data        []byte
	ContentType string
}

// UploadResponse locates the stored object.
type UploadResponse struct {
	Path string
	URL  string
}

// UploadProvider exposes Storage uploads as a RequestResponse provider so
// they can be wrapped with the provider middleware chain.
type UploadProvider struct {
	name    string
	storage Storage
}

func NewUploadProvider(name string, s Storage) *UploadProvider {
	return &UploadProvider{name: name, storage: s}
}

var _ provider.RequestResponse[UploadRequest, *UploadResponse] = (*UploadProvider)(nil)

func (p *UploadProvider) Name() string                       { return p.name }
func (p *UploadProvider) IsAvailable(_ context.Context) bool { return p.storage != nil }

// Execute uploads the data and resolves its public URL. Data is held as a
// byte slice so a retrying middleware can replay it.
func (p *UploadProvider) Execute(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	if err := p.storage.Upload(ctx, req.Path, bytes.NewReader(req.Data), req.ContentType); err != nil {
		return nil, fmt.Errorf("storage upload provider: %w", err)
	}
	url, err := p.storage.URL(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("storage upload provider: resolve url: %w", err)
	}
	return &UploadResponse{Path: req.Path, URL: url}, nil
}
