package employee

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/workstream-hr/workstream/pkg/constants"
)

type CreateDTO struct {
	FirstName    string    `json:"firstName" validate:"required"`
	LastName     string    `json:"lastName" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
	Position     string    `json:"position"`
	DepartmentID uint      `json:"departmentId" validate:"required"`
	HireDate     time.Time `json:"hireDate"`
}

func (d *CreateDTO) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	d.Position = strings.TrimSpace(d.Position)
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	return validateStruct(d)
}

func (d *CreateDTO) ToEntity() *Employee {
	hireDate := d.HireDate
	if hireDate.IsZero() {
		hireDate = time.Now().UTC()
	}
	return &Employee{
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Position:     d.Position,
		DepartmentID: d.DepartmentID,
		HireDate:     hireDate,
	}
}

type UpdateDTO struct {
	FirstName    string    `json:"firstName" validate:"required"`
	LastName     string    `json:"lastName" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
	Position     string    `json:"position"`
	DepartmentID uint      `json:"departmentId" validate:"required"`
	HireDate     time.Time `json:"hireDate"`
}

func (d *UpdateDTO) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	d.Position = strings.TrimSpace(d.Position)
}

func (d *UpdateDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	return validateStruct(d)
}

func (d *UpdateDTO) ToEntity(id uint) *Employee {
	return &Employee{
		ID:           id,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Position:     d.Position,
		DepartmentID: d.DepartmentID,
		HireDate:     d.HireDate,
	}
}

func validateStruct(v any) (map[string]string, bool) {
	err := constants.Validate.Struct(v)
	if err == nil {
		return map[string]string{}, true
	}
	out := map[string]string{}
	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, fieldErr := range validatorErrs {
			out[fieldErr.Field()] = "failed " + fieldErr.Tag() + " validation"
		}
	} else {
		out["_"] = err.Error()
	}
	return out, false
}
