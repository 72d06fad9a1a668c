package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/workstream-hr/workstream/modules/hrm/domain/entities/department"
	"github.com/workstream-hr/workstream/modules/hrm/infrastructure/persistence/models"
	"github.com/workstream-hr/workstream/pkg/composables"
)

const departmentColumns = "id, tenant_id, name, description, created_at, updated_at"

type DepartmentRepository struct{}

func NewDepartmentRepository() department.Repository {
	return &DepartmentRepository{}
}

func (r *DepartmentRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM departments WHERE tenant_id = $1`,
		tenantID.String(),
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DepartmentRepository) GetAll(ctx context.Context) ([]*department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+departmentColumns+`
		FROM departments
		WHERE tenant_id = $1
		ORDER BY name ASC`,
		tenantID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*department.Department
	for rows.Next() {
		entity, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id uint) (*department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		SELECT `+departmentColumns+`
		FROM departments
		WHERE id = $1 AND tenant_id = $2`,
		id, tenantID.String(),
	)
	entity, err := scanDepartment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, department.ErrNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, data *department.Department) (*department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO departments (tenant_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING `+departmentColumns,
		tenantID.String(), data.Name, data.Description,
	)
	created, err := scanDepartment(row)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create department")
	}
	return created, nil
}

func (r *DepartmentRepository) Update(ctx context.Context, data *department.Department) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `
		UPDATE departments
		SET name = $1, description = $2, updated_at = now()
		WHERE id = $3 AND tenant_id = $4`,
		data.Name, data.Description, data.ID, tenantID.String(),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return department.ErrNotFound
	}
	return nil
}

func (r *DepartmentRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx,
		`DELETE FROM departments WHERE id = $1 AND tenant_id = $2`,
		id, tenantID.String(),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return department.ErrNotFound
	}
	return nil
}

func scanDepartment(row pgx.Row) (*department.Department, error) {
	var m models.Department
	if err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.Name,
		&m.Description,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainDepartment(&m)
}
