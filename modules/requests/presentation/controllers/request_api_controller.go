package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/workstream-hr/workstream/modules/hrm/domain/aggregates/employee"
	"github.com/workstream-hr/workstream/modules/requests/domain/aggregates/request"
	"github.com/workstream-hr/workstream/modules/requests/services"
	"github.com/workstream-hr/workstream/pkg/application"
	"github.com/workstream-hr/workstream/pkg/middleware"
)

type requestItemView struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type requestView struct {
	ID         uint              `json:"id"`
	EmployeeID uint              `json:"employeeId"`
	Type       string            `json:"type"`
	Status     string            `json:"status"`
	Items      []requestItemView `json:"items"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func requestToView(req *request.Request) requestView {
	items := make([]requestItemView, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, requestItemView{
			ID:     item.ID,
			Name:   item.Name,
			Status: string(item.Status),
		})
	}
	return requestView{
		ID:         req.ID,
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		Status:     string(req.Status),
		Items:      items,
		CreatedAt:  req.CreatedAt,
		UpdatedAt:  req.UpdatedAt,
	}
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type RequestAPIController struct {
	app      application.Application
	requests *services.RequestService
	basePath string
}

func NewRequestAPIController(app application.Application) application.Controller {
	return &RequestAPIController{
		app:      app,
		requests: app.Service(services.RequestService{}).(*services.RequestService),
		basePath: "/api/requests",
	}
}

func (c *RequestAPIController) Key() string {
	return c.basePath
}

func (c *RequestAPIController) Register(r *mux.Router) {
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
}

func (c *RequestAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &request.FindParams{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if employeeID, ok := queryUint(r, "employeeId"); ok {
		params.EmployeeID = employeeID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		params.Status = request.Status(status)
	}

	items, err := c.requests.GetAll(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "REQUEST_INTERNAL", "internal error")
		return
	}
	total, err := c.requests.Count(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "REQUEST_INTERNAL", "internal error")
		return
	}

	out := make([]requestView, 0, len(items))
	for _, req := range items {
		out = append(out, requestToView(req))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *RequestAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "REQUEST_INVALID_ID", "invalid request id")
		return
	}
	entity, err := c.requests.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, request.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "REQUEST_NOT_FOUND", "request not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "REQUEST_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, requestToView(entity))
}

func (c *RequestAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto request.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "REQUEST_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":    "REQUEST_VALIDATION_FAILED",
			"message": "validation failed",
			"errors":  errs,
		})
		return
	}

	created, err := c.requests.Create(r.Context(), &dto)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			writeAPIError(w, r, http.StatusUnprocessableEntity, "EMPLOYEE_NOT_FOUND", "employee does not exist")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "REQUEST_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, requestToView(created))
}

func (c *RequestAPIController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "REQUEST_INVALID_ID", "invalid request id")
		return
	}
	var payload statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "REQUEST_INVALID_JSON", "invalid json")
		return
	}

	updated, err := c.requests.UpdateStatus(r.Context(), id, request.Status(payload.Status))
	if err != nil {
		switch {
		case errors.Is(err, request.ErrInvalidStatus):
			writeAPIError(w, r, http.StatusUnprocessableEntity, "REQUEST_INVALID_STATUS", "invalid status")
		case errors.Is(err, request.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "REQUEST_NOT_FOUND", "request not found")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "REQUEST_INTERNAL", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, requestToView(updated))
}

func (c *RequestAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "REQUEST_INVALID_ID", "invalid request id")
		return
	}
	deleted, err := c.requests.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, request.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "REQUEST_NOT_FOUND", "request not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "REQUEST_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, requestToView(deleted))
}
