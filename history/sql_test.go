package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/linguacast/database"
	"github.com/kbukum/linguacast/logger"
)

func newSQLRepo(t *testing.T) *SQLRepository {
	t.Helper()
	comp := database.NewComponent(database.Config{
		Enabled: true,
		DSN:     filepath.Join(t.TempDir(), "history.db"),
		Migrate: true,
	}, logger.Nop()).WithMigrations(Migrations, MigrationsDir)
	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("database start: %v", err)
	}
	t.Cleanup(func() { _ = comp.Stop(context.Background()) })
	return NewSQLRepository(comp.DB())
}

func TestSQLRepositoryListsNewestFirst(t *testing.T) {
	repo := newSQLRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, text := range []string{"first", "second", "third"} {
		rec := &Record{
			ID:           text,
			UserID:       "user-1",
			OriginalText: text,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := repo.Insert(ctx, &Record{ID: "other", UserID: "user-2", CreatedAt: base}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.ListByUser(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 3 || got[0].OriginalText != "third" || got[2].OriginalText != "first" {
		t.Fatalf("records = %+v", got)
	}

	limited, _ := repo.ListByUser(ctx, "user-1", 2)
	if len(limited) != 2 {
		t.Errorf("limit ignored: %d", len(limited))
	}

	none, err := repo.ListByUser(ctx, "nobody", 0)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("empty history = %v, %v", none, err)
	}
}

func TestSQLRepositoryDuplicateID(t *testing.T) {
	repo := newSQLRepo(t)
	ctx := context.Background()
	rec := &Record{ID: "dup", UserID: "u", CreatedAt: time.Now()}
	if err := repo.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := repo.Insert(ctx, &Record{ID: "dup", UserID: "u", CreatedAt: time.Now()}); err == nil {
		t.Fatal("expected primary key violation")
	}
}

func TestArchiverWithSQLRepository(t *testing.T) {
	repo := newSQLRepo(t)
	a := NewArchiver(repo, WithLogger(logger.Nop()))
	if err := a.Record(context.Background(), "user-9", Record{OriginalText: "hi", TranslatedText: "hola"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, _ := repo.ListByUser(context.Background(), "user-9", 10)
	if len(got) != 1 || got[0].TranslatedText != "hola" {
		t.Errorf("records = %+v", got)
	}
}
