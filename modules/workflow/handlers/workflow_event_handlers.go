package handlers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workstream-hr/workstream/modules/hrm/domain/aggregates/employee"
	"github.com/workstream-hr/workstream/modules/requests/domain/aggregates/request"
	"github.com/workstream-hr/workstream/modules/workflow/domain/workflowrecord"
	"github.com/workstream-hr/workstream/modules/workflow/services"
	"github.com/workstream-hr/workstream/pkg/application"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/configuration"
)

// WorkflowEventsHandler turns domain events from the hrm and requests modules
// into workflow records, so the workflow log stays append-driven instead of
// being written to directly by other modules.
type WorkflowEventsHandler struct {
	app     application.Application
	service *services.WorkflowService
	logger  *logrus.Logger
}

func RegisterWorkflowEventHandlers(app application.Application) {
	handler := &WorkflowEventsHandler{
		app:     app,
		service: app.Service(services.WorkflowService{}).(*services.WorkflowService),
		logger:  configuration.Use().Logger(),
	}
	app.EventPublisher().Subscribe(handler.onTransferRequested)
	app.EventPublisher().Subscribe(handler.onRequestCreated)
	app.EventPublisher().Subscribe(handler.onRequestStatusUpdated)
}

func (h *WorkflowEventsHandler) tenantContext(tenantID uuid.UUID) context.Context {
	ctx := composables.WithPool(context.Background(), h.app.DB())
	return composables.WithTenantID(ctx, tenantID)
}

func (h *WorkflowEventsHandler) onTransferRequested(event *employee.TransferRequestedEvent) {
	details := map[string]any{
		"oldDepartmentId": event.OldDepartmentID,
		"newDepartmentId": event.NewDepartmentID,
	}
	if event.Reason != "" {
		details["reason"] = event.Reason
	}
	h.createRecord(h.tenantContext(event.Employee.TenantID), &workflowrecord.Record{
		EmployeeID: event.Employee.ID,
		Type:       workflowrecord.TypeTransfer,
		Status:     workflowrecord.StatusPending,
		Details:    mustMarshal(details),
	})
}

func (h *WorkflowEventsHandler) onRequestCreated(event *request.CreatedEvent) {
	ctx := h.tenantContext(event.Result.TenantID)
	details := mustMarshal(map[string]any{
		"requestId":   event.Result.ID,
		"requestType": event.Result.Type,
		"items":       event.Result.ItemNames(),
	})

	// The creation itself is a fact, logged as already completed. The
	// approval record is the one reviewers act on.
	h.createRecord(ctx, &workflowrecord.Record{
		EmployeeID: event.Result.EmployeeID,
		Type:       workflowrecord.TypeRequestCreated,
		Status:     workflowrecord.StatusCompleted,
		Details:    details,
	})
	h.createRecord(ctx, &workflowrecord.Record{
		EmployeeID: event.Result.EmployeeID,
		Type:       workflowrecord.TypeRequestApproval,
		Status:     workflowrecord.StatusPending,
		Details:    details,
	})
}

func (h *WorkflowEventsHandler) onRequestStatusUpdated(event *request.StatusUpdatedEvent) {
	h.createRecord(h.tenantContext(event.Result.TenantID), &workflowrecord.Record{
		EmployeeID: event.Result.EmployeeID,
		Type:       workflowrecord.TypeRequestStatusUpdate,
		Status:     workflowrecord.StatusCompleted,
		Details: mustMarshal(map[string]any{
			"requestId":      event.Result.ID,
			"requestType":    event.Result.Type,
			"status":         string(event.Result.Status),
			"previousStatus": string(event.Previous),
		}),
	})
}

func (h *WorkflowEventsHandler) createRecord(ctx context.Context, record *workflowrecord.Record) {
	if _, err := h.service.Create(ctx, record); err != nil {
		h.logger.WithError(err).
			WithField("type", record.Type).
			WithField("employee_id", record.EmployeeID).
			Warn("failed to create workflow record")
	}
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// The inputs are maps of scalars and string slices; this cannot fail.
		return json.RawMessage("{}")
	}
	return data
}
