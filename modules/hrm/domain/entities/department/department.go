package department

import (
	"context"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/workstream-hr/workstream/pkg/constants"
)

var ErrNotFound = gerrors.New("department not found")

type Department struct {
	ID          uint
	TenantID    uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]*Department, error)
	GetByID(ctx context.Context, id uint) (*Department, error)
	Create(ctx context.Context, data *Department) (*Department, error)
	Update(ctx context.Context, data *Department) error
	Delete(ctx context.Context, id uint) error
}

type CreateDTO struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
}

func (d *CreateDTO) Ok() bool {
	d.Normalize()
	return constants.Validate.Struct(d) == nil
}

func (d *CreateDTO) ToEntity() *Department {
	return &Department{
		Name:        d.Name,
		Description: d.Description,
	}
}
