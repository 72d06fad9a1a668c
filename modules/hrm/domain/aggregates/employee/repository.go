package employee

import "context"

type Repository interface {
	// Count honors the same filters as GetPaginated; Limit and Offset are
	// ignored.
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetAll(ctx context.Context) ([]*Employee, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]*Employee, error)
	GetByID(ctx context.Context, id uint) (*Employee, error)
	Create(ctx context.Context, data *Employee) (*Employee, error)
	Update(ctx context.Context, data *Employee) error
	// UpdateDepartment reassigns the employee to the given department.
	// Setting the same department twice is a no-op.
	UpdateDepartment(ctx context.Context, id, departmentID uint) error
	Delete(ctx context.Context, id uint) error
}
