package supabase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/linguacast/storage"
)

func newTestStorage(t *testing.T, h http.HandlerFunc) (*Storage, string) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s, err := NewStorage(storage.Config{URL: srv.URL, Key: "service-key", Bucket: "translations-audio"})
	if err != nil {
		t.Fatal(err)
	}
	return s, srv.URL
}

func TestUploadSendsObjectWithAuth(t *testing.T) {
	var gotPath, gotType, gotUpsert, gotKey, gotAuth, gotBody string
	s, _ := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotPath, gotBody = r.URL.Path, string(body)
		gotType, gotUpsert = r.Header.Get("Content-Type"), r.Header.Get("x-upsert")
		gotKey, gotAuth = r.Header.Get("apikey"), r.Header.Get("Authorization")
		w.Write([]byte(`{"Key":"translations-audio/user-1/a.wav"}`))
	})

	err := s.Upload(context.Background(), "user-1/a.wav", strings.NewReader("RIFF"), "audio/wav")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotPath != "/storage/v1/object/translations-audio/user-1/a.wav" {
		t.Errorf("path = %q", gotPath)
	}
	if gotType != "audio/wav" || gotUpsert != "true" || gotBody != "RIFF" {
		t.Errorf("type=%q upsert=%q body=%q", gotType, gotUpsert, gotBody)
	}
	if gotKey != "service-key" || gotAuth != "Bearer service-key" {
		t.Errorf("auth headers apikey=%q authorization=%q", gotKey, gotAuth)
	}
}

func TestUploadRejected(t *testing.T) {
	s, _ := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"new row violates row-level security policy"}`))
	})
	if err := s.Upload(context.Background(), "a.wav", strings.NewReader("x"), ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestDelete(t *testing.T) {
	var deleted []string
	s, _ := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		if strings.HasSuffix(r.URL.Path, "/missing.wav") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		deleted = append(deleted, r.URL.Path)
	})
	ctx := context.Background()

	if err := s.Delete(ctx, "user-1/a.wav"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "/storage/v1/object/translations-audio/user-1/a.wav" {
		t.Errorf("deleted = %v", deleted)
	}
	if err := s.Delete(ctx, "missing.wav"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestPublicURL(t *testing.T) {
	s, base := newTestStorage(t, func(http.ResponseWriter, *http.Request) {})
	u, _ := s.URL(context.Background(), "user-1/a.wav")
	if u != base+"/storage/v1/object/public/translations-audio/user-1/a.wav" {
		t.Errorf("URL = %q", u)
	}
}
