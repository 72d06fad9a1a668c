package request

import "context"

type Repository interface {
	// Count honors the same filters as GetAll; Limit and Offset are ignored.
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetAll(ctx context.Context, params *FindParams) ([]*Request, error)
	GetByID(ctx context.Context, id uint) (*Request, error)
	Create(ctx context.Context, data *Request) (*Request, error)
	// UpdateStatus sets the request's status and cascades it to every item.
	UpdateStatus(ctx context.Context, id uint, status Status) error
	Delete(ctx context.Context, id uint) error
}
