package services

import (
	"context"

	"github.com/workstream-hr/workstream/modules/hrm/domain/aggregates/employee"
	"github.com/workstream-hr/workstream/modules/requests/domain/aggregates/request"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/eventbus"
)

type RequestService struct {
	repo      request.Repository
	employees employee.Repository
	publisher eventbus.EventBus
}

func NewRequestService(
	repo request.Repository,
	employees employee.Repository,
	publisher eventbus.EventBus,
) *RequestService {
	return &RequestService{
		repo:      repo,
		employees: employees,
		publisher: publisher,
	}
}

// Count honors the same filters as GetAll.
func (s *RequestService) Count(ctx context.Context, params *request.FindParams) (int64, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx, params)
	})
}

func (s *RequestService) GetAll(ctx context.Context, params *request.FindParams) ([]*request.Request, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*request.Request, error) {
		return s.repo.GetAll(txCtx, params)
	})
}

func (s *RequestService) GetByID(ctx context.Context, id uint) (*request.Request, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*request.Request, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *RequestService) Create(ctx context.Context, data *request.CreateDTO) (*request.Request, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*request.Request, error) {
		if _, err := s.employees.GetByID(txCtx, data.EmployeeID); err != nil {
			return nil, err
		}
		created, err := s.repo.Create(txCtx, data.ToEntity())
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(&request.CreatedEvent{Result: *created})
		return created, nil
	})
}

// UpdateStatus sets the request's status, cascading to its items, and
// publishes the change.
func (s *RequestService) UpdateStatus(ctx context.Context, id uint, status request.Status) (*request.Request, error) {
	if !status.Valid() {
		return nil, request.ErrInvalidStatus
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*request.Request, error) {
		previous, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if previous.Status == status {
			return previous, nil
		}
		if err := s.repo.UpdateStatus(txCtx, id, status); err != nil {
			return nil, err
		}
		updated, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(&request.StatusUpdatedEvent{
			Previous: previous.Status,
			Result:   *updated,
		})
		return updated, nil
	})
}

// PropagateStatus applies a status decided elsewhere, such as an approved
// approval workflow, to the request. The status string uses the shared
// vocabulary; anything else is rejected.
func (s *RequestService) PropagateStatus(ctx context.Context, requestID uint, status string) error {
	_, err := s.UpdateStatus(ctx, requestID, request.Status(status))
	return err
}

func (s *RequestService) Delete(ctx context.Context, id uint) (*request.Request, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*request.Request, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return nil, err
		}
		s.publisher.Publish(&request.DeletedEvent{Result: *entity})
		return entity, nil
	})
}
