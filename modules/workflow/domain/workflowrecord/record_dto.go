package workflowrecord

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/workstream-hr/workstream/pkg/constants"
)

// CreateDTO accepts a workflow record from the API. Details is stored
// verbatim; its shape is only interpreted on reads and transitions.
type CreateDTO struct {
	EmployeeID uint            `json:"employeeId" validate:"required"`
	Type       string          `json:"type" validate:"required"`
	Status     string          `json:"status"`
	Details    json.RawMessage `json:"details"`
}

func (d *CreateDTO) Normalize() {
	d.Type = strings.TrimSpace(d.Type)
	d.Status = strings.TrimSpace(d.Status)
}

func (d *CreateDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	err := constants.Validate.Struct(d)
	out := map[string]string{}
	if err != nil {
		var validatorErrs validator.ValidationErrors
		if errors.As(err, &validatorErrs) {
			for _, fieldErr := range validatorErrs {
				out[fieldErr.Field()] = "failed " + fieldErr.Tag() + " validation"
			}
		} else {
			out["_"] = err.Error()
		}
	}
	if d.Status != "" && !Status(d.Status).Valid() {
		out["Status"] = "must be one of Pending, Approved, Rejected, Completed"
	}
	return out, len(out) == 0
}

func (d *CreateDTO) ToEntity() *Record {
	return &Record{
		EmployeeID: d.EmployeeID,
		Type:       d.Type,
		Status:     Status(d.Status),
		Details:    d.Details,
	}
}
