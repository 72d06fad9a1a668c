package request

import (
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a request and of its line items. It uses
// the same vocabulary as workflow records so statuses propagate verbatim.
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

var (
	ErrNotFound      = gerrors.New("request not found")
	ErrInvalidStatus = gerrors.New("invalid request status")
)

// Item is a single line of a request. Items share the parent request's
// lifecycle: a status change on the request cascades to every item.
type Item struct {
	ID        uint
	RequestID uint
	Name      string
	Status    Status
}

type Request struct {
	ID         uint
	TenantID   uuid.UUID
	EmployeeID uint
	Type       string
	Status     Status
	Items      []Item
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ItemNames returns the item names in insertion order.
func (r *Request) ItemNames() []string {
	names := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		names = append(names, item.Name)
	}
	return names
}

type FindParams struct {
	EmployeeID uint
	Status     Status
	Limit      int
	Offset     int
}
