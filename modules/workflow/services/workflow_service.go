package services

import (
	"context"
	"errors"

	"github.com/workstream-hr/workstream/modules/workflow/domain/workflowrecord"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/eventbus"
)

// WorkflowService owns the workflow record store: creation, reads with
// display enrichment, status transitions (delegated to the engine), deletion,
// and the deduplication sweep.
type WorkflowService struct {
	repo        workflowrecord.Repository
	engine      *TransitionEngine
	sweeper     *DedupSweeper
	departments DepartmentDirectory
	publisher   eventbus.EventBus
}

func NewWorkflowService(
	repo workflowrecord.Repository,
	engine *TransitionEngine,
	sweeper *DedupSweeper,
	departments DepartmentDirectory,
	publisher eventbus.EventBus,
) *WorkflowService {
	return &WorkflowService{
		repo:        repo,
		engine:      engine,
		sweeper:     sweeper,
		departments: departments,
		publisher:   publisher,
	}
}

// Count honors the same filters as GetAll.
func (s *WorkflowService) Count(ctx context.Context, params *workflowrecord.FindParams) (int64, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx, params)
	})
}

// Create persists the record, defaulting status to Pending and keeping the
// details payload verbatim. No shape validation is performed on details.
func (s *WorkflowService) Create(ctx context.Context, record *workflowrecord.Record) (*workflowrecord.Record, error) {
	if record.Status != "" && !record.Status.Valid() {
		return nil, workflowrecord.ErrInvalidStatus
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*workflowrecord.Record, error) {
		created, err := s.repo.Create(txCtx, record)
		if err != nil {
			return nil, err
		}
		s.publisher.Publish(&workflowrecord.CreatedEvent{Result: *created})
		return created, nil
	})
}

func (s *WorkflowService) GetByID(ctx context.Context, id uint) (*workflowrecord.Record, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*workflowrecord.Record, error) {
		record, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		enriched, err := s.EnrichForDisplay(txCtx, []*workflowrecord.Record{record})
		if err != nil {
			return nil, err
		}
		return enriched[0], nil
	})
}

func (s *WorkflowService) GetAll(ctx context.Context, params *workflowrecord.FindParams) ([]*workflowrecord.Record, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*workflowrecord.Record, error) {
		records, err := s.repo.GetAll(txCtx, params)
		if err != nil {
			return nil, err
		}
		return s.EnrichForDisplay(txCtx, records)
	})
}

func (s *WorkflowService) GetByEmployee(ctx context.Context, employeeID uint) ([]*workflowrecord.Record, error) {
	return s.GetAll(ctx, &workflowrecord.FindParams{EmployeeID: employeeID})
}

// UpdateStatus drives the record through the transition engine.
func (s *WorkflowService) UpdateStatus(ctx context.Context, id uint, newStatus workflowrecord.Status) (*workflowrecord.Record, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*workflowrecord.Record, error) {
		before, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		updated, err := s.engine.Apply(txCtx, id, newStatus)
		if err != nil {
			return nil, err
		}
		if updated.Status != before.Status {
			s.publisher.Publish(&workflowrecord.TransitionedEvent{
				Previous: before.Status,
				Result:   *updated,
			})
		}
		enriched, err := s.EnrichForDisplay(txCtx, []*workflowrecord.Record{updated})
		if err != nil {
			return nil, err
		}
		return enriched[0], nil
	})
}

func (s *WorkflowService) Delete(ctx context.Context, id uint) (*workflowrecord.Record, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*workflowrecord.Record, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return nil, err
		}
		s.publisher.Publish(&workflowrecord.DeletedEvent{Result: *entity})
		return entity, nil
	})
}

// DeleteByEmployee removes every workflow record concerning the employee.
// Called by the employee-deletion flow before the employee row goes away.
func (s *WorkflowService) DeleteByEmployee(ctx context.Context, employeeID uint) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteByEmployee(txCtx, employeeID)
	})
}

// EnrichForDisplay attaches current department display names to
// transfer-typed records. Names are recomputed per read and never persisted,
// since departments may be renamed after the workflow was recorded. Records
// are returned as copies; stored payloads are untouched.
func (s *WorkflowService) EnrichForDisplay(ctx context.Context, records []*workflowrecord.Record) ([]*workflowrecord.Record, error) {
	out := make([]*workflowrecord.Record, 0, len(records))
	for _, record := range records {
		if !workflowrecord.IsTransferType(record.Type) {
			out = append(out, record)
			continue
		}
		details, ok := record.DecodedDetails().(workflowrecord.TransferDetails)
		if !ok {
			out = append(out, record)
			continue
		}

		fields := map[string]any{}
		if details.OldDepartmentID != 0 {
			if name, err := s.departments.GetName(ctx, details.OldDepartmentID); err == nil {
				fields["oldDepartmentName"] = name
			} else if !errors.Is(err, NotFoundSideEffect) {
				return nil, err
			}
		}
		if details.NewDepartmentID != 0 {
			if name, err := s.departments.GetName(ctx, details.NewDepartmentID); err == nil {
				fields["newDepartmentName"] = name
			} else if !errors.Is(err, NotFoundSideEffect) {
				return nil, err
			}
		}
		if len(fields) == 0 {
			out = append(out, record)
			continue
		}

		annotated, err := workflowrecord.AnnotateDetails(record.Details, fields)
		if err != nil {
			return nil, err
		}
		enriched := *record
		enriched.Details = annotated
		out = append(out, &enriched)
	}
	return out, nil
}

// Sweep runs the deduplication pass. It operates across tenants and outside
// any tenant transaction; see DedupSweeper for the grouping rules.
func (s *WorkflowService) Sweep(ctx context.Context) (SweepReport, error) {
	return s.sweeper.Run(ctx)
}
