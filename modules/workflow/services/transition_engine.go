package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/workstream-hr/workstream/modules/workflow/domain/workflowrecord"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/metrics"
	"github.com/workstream-hr/workstream/pkg/serrors"
)

// Collaborator interfaces the engine mutates through. The hrm and requests
// services satisfy these structurally.
type (
	EmployeeDirectory interface {
		ReassignDepartment(ctx context.Context, employeeID, departmentID uint) error
	}
	DepartmentDirectory interface {
		GetName(ctx context.Context, id uint) (string, error)
	}
	RequestPropagator interface {
		// PropagateStatus applies status to the request and its line items.
		PropagateStatus(ctx context.Context, requestID uint, status string) error
	}
)

var (
	ErrTransitionTarget       = serrors.NewError("WORKFLOW_INVALID_TARGET_STATUS", "transition target must be Approved or Rejected", "status")
	ErrMissingTransferTarget  = serrors.NewError("WORKFLOW_MISSING_TARGET_DEPARTMENT", "transfer approval requires a target department", "details.newDepartmentId")
	ErrTransferTargetNotFound = serrors.NewError("WORKFLOW_TARGET_DEPARTMENT_NOT_FOUND", "transfer target department does not exist", "details.newDepartmentId")
	ErrPropagationFailed      = serrors.NewError("WORKFLOW_PROPAGATION_FAILED", "failed to propagate status to linked request", "details.requestId")
)

// NotFoundSideEffect marks collaborator lookups that failed because the
// referenced entity no longer exists, so the engine can distinguish them from
// transient store failures.
var NotFoundSideEffect = errors.New("side effect target not found")

// TransitionEngine decides, for a workflow record moving between statuses,
// which collaborator mutations the transition implies, applies them, and
// persists the new status conditionally so concurrent transitions on the same
// record cannot both take effect.
type TransitionEngine struct {
	repo        workflowrecord.Repository
	employees   EmployeeDirectory
	departments DepartmentDirectory
	requests    RequestPropagator
	// strict surfaces propagation failures instead of the default
	// log-and-commit compatibility behavior.
	strict bool
}

func NewTransitionEngine(
	repo workflowrecord.Repository,
	employees EmployeeDirectory,
	departments DepartmentDirectory,
	requests RequestPropagator,
	strictPropagation bool,
) *TransitionEngine {
	return &TransitionEngine{
		repo:        repo,
		employees:   employees,
		departments: departments,
		requests:    requests,
		strict:      strictPropagation,
	}
}

// Apply transitions the record to newStatus, running the implied side effects
// first so a crash between the two leaves only a stale status behind, never a
// missing side effect. Re-running is safe: every side effect is idempotent
// and an already-transitioned record is a no-op.
func (e *TransitionEngine) Apply(ctx context.Context, id uint, newStatus workflowrecord.Status) (*workflowrecord.Record, error) {
	record, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Duplicate submissions land here: same status means nothing to do,
	// whatever the status is. The equality check comes before the target
	// check so re-applying a record's current status is never an error.
	if record.Status == newStatus {
		return record, nil
	}

	if newStatus != workflowrecord.StatusApproved && newStatus != workflowrecord.StatusRejected {
		return nil, ErrTransitionTarget
	}

	annotated, err := e.applySideEffects(ctx, record, newStatus)
	if err != nil {
		return nil, err
	}

	updated, err := e.repo.UpdateStatusIf(ctx, record.ID, record.Status, newStatus, annotated)
	if err != nil {
		return nil, err
	}
	if !updated {
		// A concurrent transition won the conditional write. Surface
		// whatever is now stored; the side effects are idempotent, so the
		// losing attempt changed nothing it should not have.
		return e.repo.GetByID(ctx, record.ID)
	}

	metrics.TransitionsTotal.WithLabelValues(string(newStatus)).Inc()

	result := *record
	result.Status = newStatus
	if len(annotated) > 0 {
		result.Details = annotated
	}
	return &result, nil
}

// applySideEffects runs the decision table and returns the annotated details
// payload, or nil when the payload is unchanged. First matching rule wins.
func (e *TransitionEngine) applySideEffects(ctx context.Context, record *workflowrecord.Record, newStatus workflowrecord.Status) (json.RawMessage, error) {
	switch {
	case workflowrecord.IsTransferType(record.Type):
		if newStatus != workflowrecord.StatusApproved {
			// Rejection leaves the employee's department untouched.
			return nil, nil
		}
		details, ok := record.DecodedDetails().(workflowrecord.TransferDetails)
		if !ok {
			// Malformed payload means there is no usable target department.
			return nil, ErrMissingTransferTarget
		}
		return e.approveTransfer(ctx, record, details)

	case record.Type == workflowrecord.TypeRequestApproval:
		details, ok := record.DecodedDetails().(workflowrecord.RequestApprovalDetails)
		if !ok || details.RequestID == 0 {
			return nil, nil
		}
		return nil, e.propagateToRequest(ctx, details.RequestID, newStatus)

	default:
		// Informational record types carry no downstream effect.
		return nil, nil
	}
}

func (e *TransitionEngine) approveTransfer(ctx context.Context, record *workflowrecord.Record, details workflowrecord.TransferDetails) (json.RawMessage, error) {
	if details.NewDepartmentID == 0 {
		return nil, ErrMissingTransferTarget
	}

	name, err := e.departments.GetName(ctx, details.NewDepartmentID)
	if err != nil {
		if errors.Is(err, NotFoundSideEffect) {
			return nil, ErrTransferTargetNotFound
		}
		return nil, err
	}

	// Reassigning to the same department twice is a no-op on the employee
	// row, which is what makes transition replay safe.
	if err := e.employees.ReassignDepartment(ctx, record.EmployeeID, details.NewDepartmentID); err != nil {
		return nil, err
	}

	return workflowrecord.AnnotateDetails(record.Details, map[string]any{
		"newDepartmentName": name,
	})
}

func (e *TransitionEngine) propagateToRequest(ctx context.Context, requestID uint, newStatus workflowrecord.Status) error {
	err := e.requests.PropagateStatus(ctx, requestID, string(newStatus))
	if err == nil {
		return nil
	}
	if !errors.Is(err, NotFoundSideEffect) {
		return err
	}
	if e.strict {
		return ErrPropagationFailed
	}
	// Best effort: the workflow log is the primary record of the admin's
	// decision; a vanished request must not block recording it.
	composables.UseLogger(ctx).
		WithError(err).
		WithField("request_id", requestID).
		Warn("workflow transition could not propagate status to linked request")
	return nil
}
