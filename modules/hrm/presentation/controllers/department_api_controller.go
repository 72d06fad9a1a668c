package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/workstream-hr/workstream/modules/hrm/domain/entities/department"
	"github.com/workstream-hr/workstream/modules/hrm/services"
	"github.com/workstream-hr/workstream/pkg/application"
	"github.com/workstream-hr/workstream/pkg/middleware"
)

type departmentView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type DepartmentAPIController struct {
	app         application.Application
	departments *services.DepartmentService
	basePath    string
}

func NewDepartmentAPIController(app application.Application) application.Controller {
	return &DepartmentAPIController{
		app:         app,
		departments: app.Service(services.DepartmentService{}).(*services.DepartmentService),
		basePath:    "/api/departments",
	}
}

func (c *DepartmentAPIController) Key() string {
	return c.basePath
}

func (c *DepartmentAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(middleware.RequireTenant())
	writeRouter.Use(middleware.WithTransaction())
	writeRouter.HandleFunc("", c.Create).Methods(http.MethodPost)
	writeRouter.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
}

func (c *DepartmentAPIController) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.departments.GetAll(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "DEPARTMENT_INTERNAL", "internal error")
		return
	}
	out := make([]departmentView, 0, len(items))
	for _, d := range items {
		out = append(out, departmentView{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *DepartmentAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "DEPARTMENT_INVALID_ID", "invalid department id")
		return
	}
	entity, err := c.departments.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, department.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "DEPARTMENT_NOT_FOUND", "department not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "DEPARTMENT_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, departmentView{ID: entity.ID, Name: entity.Name, CreatedAt: entity.CreatedAt})
}

func (c *DepartmentAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto department.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "DEPARTMENT_INVALID_JSON", "invalid json")
		return
	}
	if !dto.Ok() {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "DEPARTMENT_VALIDATION_FAILED", "name is required")
		return
	}
	created, err := c.departments.Create(r.Context(), &dto)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "DEPARTMENT_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, departmentView{ID: created.ID, Name: created.Name, CreatedAt: created.CreatedAt})
}

func (c *DepartmentAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "DEPARTMENT_INVALID_ID", "invalid department id")
		return
	}
	if err := c.departments.Delete(r.Context(), id); err != nil {
		if errors.Is(err, department.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "DEPARTMENT_NOT_FOUND", "department not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "DEPARTMENT_INTERNAL", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
