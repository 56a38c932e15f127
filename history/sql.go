package history

import (
	"context"

	"github.com/kbukum/linguacast/database"
)

// SQLRepository stores records with gorm.
type SQLRepository struct {
	db *database.DB
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Insert(ctx context.Context, rec *Record) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return database.FromDatabase(err, "translation")
	}
	return nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	records := []Record{}
	if err := q.Find(&records).Error; err != nil {
		return nil, database.FromDatabase(err, "translation")
	}
	return records, nil
}
