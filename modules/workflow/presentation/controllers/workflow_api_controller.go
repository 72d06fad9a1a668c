package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/workstream-hr/workstream/modules/workflow/domain/workflowrecord"
	"github.com/workstream-hr/workstream/modules/workflow/services"
	"github.com/workstream-hr/workstream/pkg/application"
	"github.com/workstream-hr/workstream/pkg/middleware"
	"github.com/workstream-hr/workstream/pkg/serrors"
)

type workflowView struct {
	ID         uint            `json:"id"`
	EmployeeID uint            `json:"employeeId"`
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	Details    json.RawMessage `json:"details"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func workflowToView(record *workflowrecord.Record) workflowView {
	details := record.Details
	if len(details) == 0 {
		details = json.RawMessage("{}")
	}
	return workflowView{
		ID:         record.ID,
		EmployeeID: record.EmployeeID,
		Type:       record.Type,
		Status:     string(record.Status),
		Details:    details,
		CreatedAt:  record.CreatedAt,
	}
}

type workflowStatusUpdate struct {
	Status string `json:"status"`
}

type WorkflowAPIController struct {
	app       application.Application
	workflows *services.WorkflowService
	basePath  string
}

func NewWorkflowAPIController(app application.Application) application.Controller {
	return &WorkflowAPIController{
		app:       app,
		workflows: app.Service(services.WorkflowService{}).(*services.WorkflowService),
		basePath:  "/api/workflows",
	}
}

func (c *WorkflowAPIController) Key() string {
	return c.basePath
}

func (c *WorkflowAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(middleware.RequireTenant())
	writeRouter.Use(middleware.WithTransaction())
	writeRouter.HandleFunc("", c.Create).Methods(http.MethodPost)
	writeRouter.HandleFunc("/{id:[0-9]+}/status", c.UpdateStatus).Methods(http.MethodPut)
	writeRouter.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)

	// The sweep spans every tenant, so it is registered outside the
	// tenant-scoped routers.
	r.HandleFunc(c.basePath+"/sweep", c.Sweep).Methods(http.MethodPost)
}

func (c *WorkflowAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &workflowrecord.FindParams{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if employeeID, ok := queryUint(r, "employeeId"); ok {
		params.EmployeeID = employeeID
	}
	if recordType := r.URL.Query().Get("type"); recordType != "" {
		params.Type = recordType
	}

	items, err := c.workflows.GetAll(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "WORKFLOW_INTERNAL", "internal error")
		return
	}
	total, err := c.workflows.Count(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "WORKFLOW_INTERNAL", "internal error")
		return
	}

	out := make([]workflowView, 0, len(items))
	for _, record := range items {
		out = append(out, workflowToView(record))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *WorkflowAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "WORKFLOW_INVALID_ID", "invalid workflow id")
		return
	}
	record, err := c.workflows.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, workflowrecord.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "WORKFLOW_NOT_FOUND", "workflow record not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "WORKFLOW_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, workflowToView(record))
}

func (c *WorkflowAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto workflowrecord.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "WORKFLOW_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":    "WORKFLOW_VALIDATION_FAILED",
			"message": "validation failed",
			"errors":  errs,
		})
		return
	}

	created, err := c.workflows.Create(r.Context(), dto.ToEntity())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "WORKFLOW_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, workflowToView(created))
}

func (c *WorkflowAPIController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "WORKFLOW_INVALID_ID", "invalid workflow id")
		return
	}
	var payload workflowStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "WORKFLOW_INVALID_JSON", "invalid json")
		return
	}

	updated, err := c.workflows.UpdateStatus(r.Context(), id, workflowrecord.Status(payload.Status))
	if err != nil {
		var coded *serrors.Base
		switch {
		case errors.Is(err, workflowrecord.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "WORKFLOW_NOT_FOUND", "workflow record not found")
		case errors.Is(err, services.ErrPropagationFailed):
			writeAPIError(w, r, http.StatusBadGateway, services.ErrPropagationFailed.Code, services.ErrPropagationFailed.Message)
		case errors.As(err, &coded):
			writeAPIError(w, r, http.StatusBadRequest, coded.Code, coded.Message)
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "WORKFLOW_INTERNAL", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, workflowToView(updated))
}

func (c *WorkflowAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "WORKFLOW_INVALID_ID", "invalid workflow id")
		return
	}
	deleted, err := c.workflows.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, workflowrecord.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "WORKFLOW_NOT_FOUND", "workflow record not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "WORKFLOW_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, workflowToView(deleted))
}

func (c *WorkflowAPIController) Sweep(w http.ResponseWriter, r *http.Request) {
	report, err := c.workflows.Sweep(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "WORKFLOW_SWEEP_FAILED", "sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transfers":        report.Transfers,
		"requestApprovals": report.RequestApprovals,
		"deleted":          report.Total(),
	})
}
