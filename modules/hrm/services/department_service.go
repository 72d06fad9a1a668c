package services

import (
	"context"

	"github.com/workstream-hr/workstream/modules/hrm/domain/entities/department"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/eventbus"
)

type DepartmentService struct {
	repo      department.Repository
	publisher eventbus.EventBus
}

func NewDepartmentService(repo department.Repository, publisher eventbus.EventBus) *DepartmentService {
	return &DepartmentService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *DepartmentService) Count(ctx context.Context) (int64, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *DepartmentService) GetAll(ctx context.Context) ([]*department.Department, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*department.Department, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *DepartmentService) GetByID(ctx context.Context, id uint) (*department.Department, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*department.Department, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

// GetName resolves a department's current display name.
func (s *DepartmentService) GetName(ctx context.Context, id uint) (string, error) {
	entity, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return entity.Name, nil
}

func (s *DepartmentService) Create(ctx context.Context, data *department.CreateDTO) (*department.Department, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*department.Department, error) {
		return s.repo.Create(txCtx, data.ToEntity())
	})
}

func (s *DepartmentService) Update(ctx context.Context, data *department.Department) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, data)
	})
}

func (s *DepartmentService) Delete(ctx context.Context, id uint) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}
