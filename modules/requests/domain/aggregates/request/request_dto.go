package request

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/workstream-hr/workstream/pkg/constants"
)

type CreateDTO struct {
	EmployeeID uint     `json:"employeeId" validate:"required"`
	Type       string   `json:"type" validate:"required"`
	Items      []string `json:"items" validate:"dive,required"`
}

func (d *CreateDTO) Normalize() {
	d.Type = strings.TrimSpace(d.Type)
	items := d.Items[:0]
	for _, item := range d.Items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	d.Items = items
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	err := constants.Validate.Struct(d)
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

func (d *CreateDTO) ToEntity() *Request {
	items := make([]Item, 0, len(d.Items))
	for _, name := range d.Items {
		items = append(items, Item{Name: name, Status: StatusPending})
	}
	return &Request{
		EmployeeID: d.EmployeeID,
		Type:       d.Type,
		Status:     StatusPending,
		Items:      items,
	}
}
