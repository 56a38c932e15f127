package history

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/kbukum/linguacast/errors"
	"github.com/kbukum/linguacast/httpclient"
)

// SupabaseConfig addresses the Supabase project holding the translations table.
type SupabaseConfig struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Key     string        `yaml:"key" mapstructure:"key"`
	Table   string        `yaml:"table" mapstructure:"table"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// SupabaseRepository stores records through the PostgREST API at {url}/rest/v1.
type SupabaseRepository struct {
	client *httpclient.Client
	table  string
}

var _ Repository = (*SupabaseRepository)(nil)

func NewSupabaseRepository(cfg SupabaseConfig) (*SupabaseRepository, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, apperrors.MissingField("supabase url/key")
	}
	if cfg.Table == "" {
		cfg.Table = Record{}.TableName()
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL:   strings.TrimRight(cfg.URL, "/") + "/rest/v1",
		Timeout:   cfg.Timeout,
		Auth:      httpclient.SupabaseAuth(cfg.Key),
		Transport: cfg.Transport,
	}.Resilient("supabase-rest"))
	if err != nil {
		return nil, fmt.Errorf("history: supabase client: %w", err)
	}
	return &SupabaseRepository{client: client, table: cfg.Table}, nil
}

func (r *SupabaseRepository) Insert(ctx context.Context, rec *Record) error {
	_, err := r.client.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    r.table,
		Headers: map[string]string{"Prefer": "return=minimal"},
		Body:    rec,
	})
	if err != nil {
		return apperrors.ExternalServiceError("supabase", err)
	}
	return nil
}

func (r *SupabaseRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	query := map[string]string{
		"select":  "*",
		"user_id": "eq." + userID,
		"order":   "created_at.desc",
	}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}
	resp, err := r.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: r.table, Query: query})
	if err != nil {
		return nil, apperrors.ExternalServiceError("supabase", err)
	}
	records := []Record{}
	if err := resp.JSON(&records); err != nil {
		return nil, apperrors.ExternalServiceError("supabase", err)
	}
	return records, nil
}
