package history

import (
	"context"
	"time"
)

// Record is one persisted translation.
type Record struct {
	ID             string    `json:"id" gorm:"column:id;primaryKey"`
	UserID         string    `json:"user_id" gorm:"column:user_id;index"`
	OriginalText   string    `json:"original_text" gorm:"column:original_text"`
	TranslatedText string    `json:"translated_text" gorm:"column:translated_text"`
	SourceLang     string    `json:"source_lang" gorm:"column:source_lang"`
	TargetLang     string    `json:"target_lang" gorm:"column:target_lang"`
	SpeakerID      string    `json:"speaker_id" gorm:"column:speaker_id"`
	AudioURL       string    `json:"audio_url,omitempty" gorm:"column:audio_url"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at"`

	// Audio is the WAV to upload. It is never stored in the row.
	Audio []byte `json:"-" gorm:"-"`
}

func (Record) TableName() string { return "translations" }

// Repository stores and lists records.
type Repository interface {
	Insert(ctx context.Context, rec *Record) error
	// ListByUser returns the user's records newest first. limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
}

// Recorder accepts finished translations for a user.
type Recorder interface {
	Record(ctx context.Context, userID string, rec Record) error
}
