package resumes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of BatchRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Batch // userId -> batches
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Batch),
	}
}

// Create stores a batch for its user.
func (r *MemoryRepo) Create(ctx context.Context, batch Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if batch.ID == "" || batch.UserID == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[batch.UserID] = append(r.data[batch.UserID], cloneBatch(batch))
	return nil
}

// GetByID returns a batch by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userId, batchID string) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.data[userId] {
		if b.ID == batchID {
			return cloneBatch(b), nil
		}
	}
	return Batch{}, ErrNotFound
}

// ListByUser returns batch summaries for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]BatchSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	summaries := make([]BatchSummary, 0, len(r.data[userId]))
	for _, b := range r.data[userId] {
		summaries = append(summaries, b.Summary())
	}
	r.mu.RUnlock()

	if offset >= len(summaries) {
		return []BatchSummary{}, nil
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	end := len(summaries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return summaries[offset:end], nil
}

func cloneBatch(b Batch) Batch {
	b.Records = append([]Record{}, b.Records...)
	b.Skipped = append([]FileNotice{}, b.Skipped...)
	b.Failed = append([]FileNotice{}, b.Failed...)
	return b
}
