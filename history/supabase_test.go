package history

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSupabaseInsert(t *testing.T) {
	var gotPath, gotPrefer, gotKey string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotPrefer, gotKey = r.URL.Path, r.Header.Get("Prefer"), r.Header.Get("apikey")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	repo, err := NewSupabaseRepository(SupabaseConfig{URL: srv.URL, Key: "anon"})
	if err != nil {
		t.Fatal(err)
	}
	rec := &Record{ID: "r1", UserID: "u", OriginalText: "hello", SpeakerID: "A", Audio: []byte("RIFF"), CreatedAt: time.Now()}
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if gotPath != "/rest/v1/translations" || gotPrefer != "return=minimal" || gotKey != "anon" {
		t.Errorf("path=%q prefer=%q apikey=%q", gotPath, gotPrefer, gotKey)
	}
	if body["speaker_id"] != "A" || body["original_text"] != "hello" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["Audio"]; ok {
		t.Error("audio bytes must not be sent")
	}
}

func TestSupabaseListByUser(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{"user_id": q.Get("user_id"), "order": q.Get("order"), "limit": q.Get("limit")}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"2","user_id":"u","original_text":"b","created_at":"2026-01-02T00:00:00Z"},
			{"id":"1","user_id":"u","original_text":"a","created_at":"2026-01-01T00:00:00Z"}]`))
	}))
	defer srv.Close()

	repo, _ := NewSupabaseRepository(SupabaseConfig{URL: srv.URL, Key: "anon"})
	got, err := repo.ListByUser(context.Background(), "u", 50)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if gotQuery["user_id"] != "eq.u" || gotQuery["order"] != "created_at.desc" || gotQuery["limit"] != "50" {
		t.Errorf("query = %v", gotQuery)
	}
	if len(got) != 2 || got[0].ID != "2" {
		t.Errorf("records = %+v", got)
	}
}

func TestSupabaseRequiresCredentials(t *testing.T) {
	if _, err := NewSupabaseRepository(SupabaseConfig{URL: "http://x"}); err == nil {
		t.Fatal("expected missing key error")
	}
}
