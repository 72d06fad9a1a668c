package employee

import (
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = gerrors.New("employee not found")
	ErrEmailTaken = gerrors.New("employee email already in use")
)

type Employee struct {
	ID           uint
	TenantID     uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	Position     string
	DepartmentID uint
	HireDate     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e *Employee) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type FindParams struct {
	DepartmentID uint
	Limit        int
	Offset       int
}
