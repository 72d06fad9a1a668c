package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/workstream-hr/workstream/modules/hrm/domain/aggregates/employee"
	"github.com/workstream-hr/workstream/modules/hrm/domain/entities/department"
	"github.com/workstream-hr/workstream/modules/hrm/services"
	"github.com/workstream-hr/workstream/pkg/application"
	"github.com/workstream-hr/workstream/pkg/middleware"
)

type employeeView struct {
	ID           uint      `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Position     string    `json:"position"`
	DepartmentID uint      `json:"departmentId"`
	HireDate     time.Time `json:"hireDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func employeeToView(e *employee.Employee) employeeView {
	return employeeView{
		ID:           e.ID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		FullName:     e.FullName(),
		Email:        e.Email,
		Position:     e.Position,
		DepartmentID: e.DepartmentID,
		HireDate:     e.HireDate,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

type transferRequest struct {
	NewDepartmentID uint   `json:"newDepartmentId"`
	Reason          string `json:"reason"`
}

type EmployeeAPIController struct {
	app       application.Application
	employees *services.EmployeeService
	basePath  string
}

func NewEmployeeAPIController(app application.Application) application.Controller {
	return &EmployeeAPIController{
		app:       app,
		employees: app.Service(services.EmployeeService{}).(*services.EmployeeService),
		basePath:  "/api/employees",
	}
}

func (c *EmployeeAPIController) Key() string {
	return c.basePath
}

func (c *EmployeeAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireTenant())

	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(middleware.RequireTenant())
	writeRouter.Use(middleware.WithTransaction())
	writeRouter.HandleFunc("", c.Create).Methods(http.MethodPost)
	writeRouter.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	writeRouter.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	writeRouter.HandleFunc("/{id:[0-9]+}/transfer", c.RequestTransfer).Methods(http.MethodPost)
}

func (c *EmployeeAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &employee.FindParams{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if departmentID, ok := queryUint(r, "departmentId"); ok {
		params.DepartmentID = departmentID
	}

	items, err := c.employees.GetPaginated(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "EMPLOYEE_INTERNAL", "internal error")
		return
	}
	total, err := c.employees.Count(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "EMPLOYEE_INTERNAL", "internal error")
		return
	}

	out := make([]employeeView, 0, len(items))
	for _, e := range items {
		out = append(out, employeeToView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *EmployeeAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "EMPLOYEE_INVALID_ID", "invalid employee id")
		return
	}
	entity, err := c.employees.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "employee not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "EMPLOYEE_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, employeeToView(entity))
}

func (c *EmployeeAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto employee.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "EMPLOYEE_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":    "EMPLOYEE_VALIDATION_FAILED",
			"message": "validation failed",
			"errors":  errs,
		})
		return
	}

	created, err := c.employees.Create(r.Context(), &dto)
	if err != nil {
		switch {
		case errors.Is(err, department.ErrNotFound):
			writeAPIError(w, r, http.StatusUnprocessableEntity, "DEPARTMENT_NOT_FOUND", "department does not exist")
		case errors.Is(err, employee.ErrEmailTaken):
			writeAPIError(w, r, http.StatusConflict, "EMPLOYEE_EMAIL_CONFLICT", "email already exists")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "EMPLOYEE_INTERNAL", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, employeeToView(created))
}

func (c *EmployeeAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "EMPLOYEE_INVALID_ID", "invalid employee id")
		return
	}
	var dto employee.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "EMPLOYEE_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":    "EMPLOYEE_VALIDATION_FAILED",
			"message": "validation failed",
			"errors":  errs,
		})
		return
	}

	updated, err := c.employees.Update(r.Context(), id, &dto)
	if err != nil {
		switch {
		case errors.Is(err, employee.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "employee not found")
		case errors.Is(err, department.ErrNotFound):
			writeAPIError(w, r, http.StatusUnprocessableEntity, "DEPARTMENT_NOT_FOUND", "department does not exist")
		case errors.Is(err, employee.ErrEmailTaken):
			writeAPIError(w, r, http.StatusConflict, "EMPLOYEE_EMAIL_CONFLICT", "email already exists")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "EMPLOYEE_INTERNAL", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, employeeToView(updated))
}

func (c *EmployeeAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "EMPLOYEE_INVALID_ID", "invalid employee id")
		return
	}
	deleted, err := c.employees.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "employee not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "EMPLOYEE_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, employeeToView(deleted))
}

// RequestTransfer records a pending transfer for the employee. The department
// change is applied later, when the transfer workflow is approved.
func (c *EmployeeAPIController) RequestTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "EMPLOYEE_INVALID_ID", "invalid employee id")
		return
	}
	var payload transferRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "EMPLOYEE_INVALID_JSON", "invalid json")
		return
	}
	if payload.NewDepartmentID == 0 {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "TRANSFER_TARGET_REQUIRED", "newDepartmentId is required")
		return
	}

	if err := c.employees.RequestTransfer(r.Context(), id, payload.NewDepartmentID, payload.Reason); err != nil {
		switch {
		case errors.Is(err, employee.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "employee not found")
		case errors.Is(err, department.ErrNotFound):
			writeAPIError(w, r, http.StatusUnprocessableEntity, "DEPARTMENT_NOT_FOUND", "department does not exist")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "EMPLOYEE_INTERNAL", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "pending",
	})
}
