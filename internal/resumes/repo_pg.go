package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements BatchRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a batch and its records in one transaction.
func (r *PGRepo) Create(ctx context.Context, batch Batch) (err error) {
	skipped, err := json.Marshal(nonNilNotices(batch.Skipped))
	if err != nil {
		return fmt.Errorf("marshal skipped: %w", err)
	}
	failed, err := json.Marshal(nonNilNotices(batch.Failed))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
INSERT INTO resume_batches (
    id,
    user_id,
    total_files,
    skipped,
    failed,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6)`,
		batch.ID,
		batch.UserID,
		batch.Total,
		skipped,
		failed,
		batch.CreatedAt,
	); err != nil {
		return err
	}

	for i, rec := range batch.Records {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO resume_records (
    batch_id,
    position,
    name,
    email,
    phone,
    file_name,
    qualification
) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			batch.ID,
			i,
			nullString(rec.Name),
			nullString(rec.Email),
			nullString(rec.Phone),
			rec.FileName,
			rec.Qualification,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID returns a batch with its records.
func (r *PGRepo) GetByID(ctx context.Context, userId, batchID string) (Batch, error) {
	const batchQuery = `
SELECT id, user_id, total_files, skipped, failed, created_at
FROM resume_batches
WHERE id = $1 AND user_id = $2`
	var batch Batch
	var skipped, failed []byte
	err := r.DB.QueryRowContext(ctx, batchQuery, batchID, userId).Scan(
		&batch.ID,
		&batch.UserID,
		&batch.Total,
		&skipped,
		&failed,
		&batch.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Batch{}, ErrNotFound
	}
	if err != nil {
		return Batch{}, err
	}
	if batch.Skipped, err = decodeNotices(skipped); err != nil {
		return Batch{}, fmt.Errorf("decode skipped: %w", err)
	}
	if batch.Failed, err = decodeNotices(failed); err != nil {
		return Batch{}, fmt.Errorf("decode failed: %w", err)
	}

	const recordsQuery = `
SELECT name, email, phone, file_name, qualification
FROM resume_records
WHERE batch_id = $1
ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, recordsQuery, batch.ID)
	if err != nil {
		return Batch{}, err
	}
	defer rows.Close()

	batch.Records = []Record{}
	for rows.Next() {
		var rec Record
		var name, email, phone sql.NullString
		if err := rows.Scan(&name, &email, &phone, &rec.FileName, &rec.Qualification); err != nil {
			return Batch{}, err
		}
		rec.Name = stringPtr(name)
		rec.Email = stringPtr(email)
		rec.Phone = stringPtr(phone)
		batch.Records = append(batch.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return Batch{}, err
	}
	return batch, nil
}

// ListByUser returns batch summaries for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]BatchSummary, error) {
	if offset < 0 {
		offset = 0
	}
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	const query = `
SELECT b.id,
       b.total_files,
       (SELECT COUNT(*) FROM resume_records r WHERE r.batch_id = b.id),
       jsonb_array_length(b.skipped),
       jsonb_array_length(b.failed),
       b.created_at
FROM resume_batches b
WHERE b.user_id = $1
ORDER BY b.created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userId, limitArg, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []BatchSummary{}
	for rows.Next() {
		var s BatchSummary
		if err := rows.Scan(&s.ID, &s.Total, &s.Records, &s.Skipped, &s.Failed, &s.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nonNilNotices(notices []FileNotice) []FileNotice {
	if notices == nil {
		return []FileNotice{}
	}
	return notices
}

func decodeNotices(raw []byte) ([]FileNotice, error) {
	notices := []FileNotice{}
	if len(raw) == 0 {
		return notices, nil
	}
	if err := json.Unmarshal(raw, &notices); err != nil {
		return nil, err
	}
	return notices, nil
}
