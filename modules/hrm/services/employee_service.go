package services

import (
	"context"
	"errors"

	"github.com/workstream-hr/workstream/modules/hrm/domain/aggregates/employee"
	"github.com/workstream-hr/workstream/modules/hrm/domain/entities/department"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/eventbus"
)

// WorkflowPurger removes an employee's workflow records. Satisfied by the
// workflow repository; deleting an employee deletes their workflows first as
// an explicit step, since workflow rows are not cascade-deleted.
type WorkflowPurger interface {
	DeleteByEmployee(ctx context.Context, employeeID uint) error
}

type EmployeeService struct {
	repo        employee.Repository
	departments department.Repository
	workflows   WorkflowPurger
	publisher   eventbus.EventBus
}

func NewEmployeeService(
	repo employee.Repository,
	departments department.Repository,
	workflows WorkflowPurger,
	publisher eventbus.EventBus,
) *EmployeeService {
	return &EmployeeService{
		repo:        repo,
		departments: departments,
		workflows:   workflows,
		publisher:   publisher,
	}
}

// Count honors the same filters as GetPaginated.
func (s *EmployeeService) Count(ctx context.Context, params *employee.FindParams) (int64, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx, params)
	})
}

func (s *EmployeeService) GetAll(ctx context.Context) ([]*employee.Employee, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*employee.Employee, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *EmployeeService) GetPaginated(ctx context.Context, params *employee.FindParams) ([]*employee.Employee, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*employee.Employee, error) {
		return s.repo.GetPaginated(txCtx, params)
	})
}

func (s *EmployeeService) GetByID(ctx context.Context, id uint) (*employee.Employee, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *EmployeeService) Create(ctx context.Context, data *employee.CreateDTO) (*employee.Employee, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		if _, err := s.departments.GetByID(txCtx, data.DepartmentID); err != nil {
			return nil, err
		}
		created, err := s.repo.Create(txCtx, data.ToEntity())
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(&employee.CreatedEvent{Data: *data, Result: *created})
		return created, nil
	})
}

func (s *EmployeeService) Update(ctx context.Context, id uint, data *employee.UpdateDTO) (*employee.Employee, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		if _, err := s.departments.GetByID(txCtx, data.DepartmentID); err != nil {
			return nil, err
		}
		entity := data.ToEntity(id)
		if err := s.repo.Update(txCtx, entity); err != nil {
			return nil, err
		}
		updated, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(&employee.UpdatedEvent{Data: *data, Result: *updated})
		return updated, nil
	})
}

// RequestTransfer records the intent to move an employee to a new department.
// The move itself happens when the resulting Transfer workflow is approved.
func (s *EmployeeService) RequestTransfer(ctx context.Context, id, newDepartmentID uint, reason string) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if _, err := s.departments.GetByID(txCtx, newDepartmentID); err != nil {
			return err
		}
		s.publisher.Publish(&employee.TransferRequestedEvent{
			Employee:        *entity,
			OldDepartmentID: entity.DepartmentID,
			NewDepartmentID: newDepartmentID,
			Reason:          reason,
		})
		return nil
	})
}

// ReassignDepartment moves the employee immediately. Used by the workflow
// transition engine when a transfer is approved; setting the same department
// twice is a no-op.
func (s *EmployeeService) ReassignDepartment(ctx context.Context, employeeID, departmentID uint) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.repo.UpdateDepartment(txCtx, employeeID, departmentID)
	})
}

func (s *EmployeeService) Delete(ctx context.Context, id uint) (*employee.Employee, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		// Workflow records reference the employee by id without a cascade;
		// they go first.
		if err := s.workflows.DeleteByEmployee(txCtx, id); err != nil && !errors.Is(err, employee.ErrNotFound) {
			return nil, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return nil, err
		}
		s.publisher.Publish(&employee.DeletedEvent{Result: *entity})
		return entity, nil
	})
}
