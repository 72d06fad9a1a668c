package workflowrecord

import (
	"encoding/json"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a workflow record.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCompleted Status = "Completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Record types observed in practice. The set is open: unknown types are
// stored and listed, they just carry no transition side effects.
const (
	TypeTransfer            = "Transfer"
	TypeEmployeeTransfer    = "Employee Transfer"
	TypeDepartmentTransfer  = "Department Transfer"
	TypeRequestCreated      = "Request Created"
	TypeRequestApproval     = "Request Approval"
	TypeRequestStatusUpdate = "Request Status Update"
	TypeOnboarding          = "Onboarding"
)

// IsTransferType reports whether t is one of the department-reassignment
// record types.
func IsTransferType(t string) bool {
	switch t {
	case TypeTransfer, TypeEmployeeTransfer, TypeDepartmentTransfer:
		return true
	}
	return false
}

var (
	ErrNotFound      = gerrors.New("workflow record not found")
	ErrInvalidStatus = gerrors.New("invalid workflow status")
)

// Record is a logged HR event with a status lifecycle. Details is an opaque
// JSON payload whose shape depends on Type; caller-supplied fields are never
// removed, only appended to.
type Record struct {
	ID         uint
	TenantID   uuid.UUID
	EmployeeID uint
	Type       string
	Status     Status
	Details    json.RawMessage
	CreatedAt  time.Time
}

// DecodedDetails returns the typed view of the details payload for this
// record's type.
func (r *Record) DecodedDetails() Details {
	return DecodeDetails(r.Type, r.Details)
}

type FindParams struct {
	EmployeeID uint
	Type       string
	Limit      int
	Offset     int
}
