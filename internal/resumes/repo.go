package resumes

import "context"

// BatchRepo persists finished batches. View links are never stored.
type BatchRepo interface {
	Create(ctx context.Context, batch Batch) error
	GetByID(ctx context.Context, userId, batchID string) (Batch, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]BatchSummary, error)
}
