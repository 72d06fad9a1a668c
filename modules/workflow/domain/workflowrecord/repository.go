package workflowrecord

import (
	"context"
	"encoding/json"
)

type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	GetByID(ctx context.Context, id uint) (*Record, error)
	// GetAll and GetByEmployee return records ordered by creation time
	// descending; callers needing chronological order sort ascending
	// themselves.
	GetAll(ctx context.Context, params *FindParams) ([]*Record, error)
	GetByEmployee(ctx context.Context, employeeID uint) ([]*Record, error)
	// ListByTypeAscending returns every record of the given type across all
	// tenants, ordered by creation time ascending. Used by the
	// deduplication sweep.
	ListByTypeAscending(ctx context.Context, recordType string) ([]*Record, error)
	// UpdateStatusIf persists newStatus and details only when the stored
	// status still equals from, reporting whether the row was updated. The
	// conditional write is what serializes concurrent transitions on the
	// same record.
	UpdateStatusIf(ctx context.Context, id uint, from, to Status, details json.RawMessage) (bool, error)
	Delete(ctx context.Context, id uint) error
	DeleteMany(ctx context.Context, ids []uint) (int64, error)
	DeleteByEmployee(ctx context.Context, employeeID uint) error
	// Count honors the same filters as GetAll; Limit and Offset are ignored.
	Count(ctx context.Context, params *FindParams) (int64, error)
}
