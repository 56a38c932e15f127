package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/linguacast/kafka"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/provider"
	"github.com/kbukum/linguacast/storage"
)

// EventTypeCompleted is published once per inserted record.
const EventTypeCompleted = "translation.completed"

// Uploader stores audio blobs. storage.UploadProvider wrapped in the
// provider middleware chain satisfies it.
type Uploader = provider.RequestResponse[storage.UploadRequest, *storage.UploadResponse]

// BlobRemover deletes stored audio. storage.Storage satisfies it.
type BlobRemover interface {
	Delete(ctx context.Context, path string) error
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event kafka.Event) error
}

// Archiver implements Recorder on top of a Repository, with optional
// audio upload and event publishing.
type Archiver struct {
	repo     Repository
	uploader Uploader
	remover  BlobRemover
	events   EventPublisher
	topic    string
	now      func() time.Time
	log      *logger.Logger
}

var _ Recorder = (*Archiver)(nil)

type Option func(*Archiver)

// WithUploader enables audio upload.
func WithUploader(u Uploader) Option {
	return func(a *Archiver) { a.uploader = u }
}

// WithBlobCleanup removes uploaded audio again when the record insert
// fails, so storage holds no clips without a history row.
func WithBlobCleanup(r BlobRemover) Option {
	return func(a *Archiver) { a.remover = r }
}

// WithEvents publishes a translation.completed event to topic after each insert.
func WithEvents(p EventPublisher, topic string) Option {
	return func(a *Archiver) { a.events, a.topic = p, topic }
}

func WithLogger(log *logger.Logger) Option {
	return func(a *Archiver) {
		if log != nil {
			a.log = log
		}
	}
}

func NewArchiver(repo Repository, opts ...Option) *Archiver {
	a := &Archiver{
		repo:  repo,
		topic: kafka.DefaultTopic,
		now:   time.Now,
		log:   logger.WithComponent("history"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AudioPath returns the blob path of a user's audio file.
func AudioPath(userID, id string) string {
	return fmt.Sprintf("%s/%s.wav", userID, id)
}

// Record stores rec for userID. A failed upload leaves AudioURL empty and
// the row is still inserted.
func (a *Archiver) Record(ctx context.Context, userID string, rec Record) error {
	log := a.log.WithContext(ctx)
	rec.UserID = userID
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = a.now().UTC()
	}

	var blobPath string
	if len(rec.Audio) > 0 && a.uploader != nil {
		resp, err := a.uploader.Execute(ctx, storage.UploadRequest{
			Path:        AudioPath(userID, uuid.NewString()),
			Data:        rec.Audio,
			ContentType: "audio/wav",
		})
		if err != nil {
			log.Warn("audio upload failed; storing record without audio", logger.ErrorFields("upload_audio", err))
		} else {
			blobPath, rec.AudioURL = resp.Path, resp.URL
		}
	}

	if err := a.repo.Insert(ctx, &rec); err != nil {
		if blobPath != "" && a.remover != nil {
			if derr := a.remover.Delete(ctx, blobPath); derr != nil {
				log.Warn("removing orphaned audio failed", logger.Fields("path", blobPath, logger.FieldError, derr.Error()))
			}
		}
		return fmt.Errorf("history insert: %w", err)
	}

	if a.events != nil {
		ev := kafka.NewEvent(EventTypeCompleted, userID, map[string]any{
			"record_id":   rec.ID,
			"source_lang": rec.SourceLang,
			"target_lang": rec.TargetLang,
			"speaker_id":  rec.SpeakerID,
			"audio_url":   rec.AudioURL,
		})
		if err := a.events.Publish(ctx, a.topic, ev); err != nil {
			log.Warn("publishing translation event failed", logger.ErrorFields("publish_event", err))
		}
	}
	return nil
}
