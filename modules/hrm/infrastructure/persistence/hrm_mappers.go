package persistence

import (
	"github.com/google/uuid"

	"github.com/workstream-hr/workstream/modules/hrm/domain/aggregates/employee"
	"github.com/workstream-hr/workstream/modules/hrm/domain/entities/department"
	"github.com/workstream-hr/workstream/modules/hrm/infrastructure/persistence/models"
)

func toDomainEmployee(row *models.Employee) (*employee.Employee, error) {
	tenantID, err := uuid.Parse(row.TenantID)
	if err != nil {
		return nil, err
	}
	return &employee.Employee{
		ID:           row.ID,
		TenantID:     tenantID,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		Position:     row.Position,
		DepartmentID: row.DepartmentID,
		HireDate:     row.HireDate,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func toDomainDepartment(row *models.Department) (*department.Department, error) {
	tenantID, err := uuid.Parse(row.TenantID)
	if err != nil {
		return nil, err
	}
	return &department.Department{
		ID:          row.ID,
		TenantID:    tenantID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
