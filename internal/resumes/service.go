package resumes

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-extractor/internal/extract"
	"resume-extractor/internal/fields"
	"resume-extractor/internal/shared/metrics"
	"resume-extractor/internal/shared/storage/object"
	"resume-extractor/internal/shared/telemetry"
	"resume-extractor/internal/staging"
)

// TextExtractor reads a staged document and returns its plain text.
type TextExtractor func(ctx context.Context, store object.ObjectStore, key, fileName, contentType string) (string, error)

// Service runs extraction batches and keeps their history.
type Service struct {
	Store object.ObjectStore
	Repo  BatchRepo
	Phone *fields.PhoneExtractor

	// ExtractText defaults to extract.Text.
	ExtractText TextExtractor
	// EmbedViewLinks attaches a data URI of the original file to each record.
	EmbedViewLinks bool
	// MaxFileBytes skips larger uploads when positive.
	MaxFileBytes int64

	Now func() time.Time
}

// ProcessBatch extracts a record from every supported upload, in order.
// onProgress, when non-nil, is called once per upload after it has been handled.
func (s *Service) ProcessBatch(ctx context.Context, userId string, uploads []Upload, onProgress func(Progress)) (Batch, error) {
	if userId == "" || len(uploads) == 0 {
		return Batch{}, ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	if s.Phone == nil {
		return Batch{}, fmt.Errorf("resumes: phone extractor not configured")
	}

	// A dropped client must not leave a batch half processed.
	workCtx := context.WithoutCancel(ctx)

	start := time.Now()
	batch := Batch{
		ID:        uuid.NewString(),
		UserID:    userId,
		Records:   []Record{},
		Skipped:   []FileNotice{},
		Failed:    []FileNotice{},
		Total:     len(uploads),
		CreatedAt: s.now(),
	}

	progress := Progress{Total: len(uploads)}
	for _, up := range uploads {
		if reason, skip := s.skipReason(up); skip {
			batch.Skipped = append(batch.Skipped, FileNotice{FileName: up.FileName, Reason: reason})
			metrics.IncFileSkipped()
			telemetry.Info("resumes.file.skipped", map[string]any{
				"batch_id":  batch.ID,
				"file_name": up.FileName,
				"reason":    reason,
			})
		} else {
			record, err := s.processOne(workCtx, userId, up)
			batch.Records = append(batch.Records, record)
			if err != nil {
				batch.Failed = append(batch.Failed, FileNotice{FileName: up.FileName, Reason: failureReason(err)})
				metrics.IncFileFailed()
				telemetry.Warn("resumes.file.failed", map[string]any{
					"batch_id":  batch.ID,
					"file_name": up.FileName,
					"error":     err.Error(),
				})
			} else {
				metrics.IncFileProcessed()
			}
		}

		progress = progress.Advance()
		if onProgress != nil {
			onProgress(progress)
		}
	}

	elapsed := time.Since(start)
	metrics.ObserveBatchDurationMs(float64(elapsed.Milliseconds()))
	telemetry.Info("resumes.batch.complete", map[string]any{
		"batch_id":    batch.ID,
		"user_id":     userId,
		"total":       batch.Total,
		"records":     len(batch.Records),
		"skipped":     len(batch.Skipped),
		"failed":      len(batch.Failed),
		"duration_ms": elapsed.Milliseconds(),
	})

	if s.Repo != nil {
		if err := s.Repo.Create(workCtx, withoutViewURLs(batch)); err != nil {
			telemetry.Error("resumes.batch.save_failed", map[string]any{
				"batch_id": batch.ID,
				"error":    err.Error(),
			})
		}
	}

	return batch, nil
}

// Get returns one stored batch owned by the user.
func (s *Service) Get(ctx context.Context, userId, batchID string) (Batch, error) {
	if userId == "" || batchID == "" {
		return Batch{}, ErrInvalidInput
	}
	if _, err := uuid.Parse(batchID); err != nil {
		return Batch{}, ErrNotFound
	}
	if s.Repo == nil {
		return Batch{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userId, batchID)
}

// List returns the user's batches, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]BatchSummary, error) {
	if userId == "" {
		return nil, ErrInvalidInput
	}
	if s.Repo == nil {
		return []BatchSummary{}, nil
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// ExtractRecord merges the four field extractors over one document's text.
func ExtractRecord(text, fileName string, phone *fields.PhoneExtractor) Record {
	record := Record{
		Name:          optional(fields.Name(text, fileName)),
		Email:         optional(fields.Email(text)),
		FileName:      fileName,
		Qualification: fields.Qualification(text),
	}
	if phone != nil {
		record.Phone = optional(phone.Extract(text))
	}
	return record
}

func (s *Service) processOne(ctx context.Context, userId string, up Upload) (Record, error) {
	record := Record{FileName: up.FileName, Qualification: fields.QualificationNone}
	text, err := s.textOf(ctx, userId, up)
	if err == nil {
		record = ExtractRecord(text, up.FileName, s.Phone)
	}
	if s.EmbedViewLinks {
		record.ViewURL = DataURI(extract.KindOf(up.FileName, up.ContentType).MimeType(), up.Data)
	}
	return record, err
}

func (s *Service) textOf(ctx context.Context, userId string, up Upload) (string, error) {
	key, release, err := staging.Stage(ctx, s.Store, userId, up.FileName, up.ContentType, bytes.NewReader(up.Data))
	if err != nil {
		return "", fmt.Errorf("%w: %w", errStageFailed, err)
	}
	defer release()

	extractText := s.ExtractText
	if extractText == nil {
		extractText = extract.Text
	}
	text, err := extractText(ctx, s.Store, key, up.FileName, up.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUnreadable, err)
	}
	return text, nil
}

func (s *Service) skipReason(up Upload) (string, bool) {
	if extract.KindOf(up.FileName, up.ContentType) == extract.KindUnsupported {
		ext := strings.ToLower(filepath.Ext(up.FileName))
		if ext == "" {
			return "unsupported file type", true
		}
		return "unsupported file type: " + ext, true
	}
	if s.MaxFileBytes > 0 && up.size() > s.MaxFileBytes {
		return fmt.Sprintf("file exceeds %d bytes", s.MaxFileBytes), true
	}
	return "", false
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func withoutViewURLs(batch Batch) Batch {
	records := make([]Record, len(batch.Records))
	copy(records, batch.Records)
	for i := range records {
		records[i].ViewURL = ""
	}
	batch.Records = records
	return batch
}
