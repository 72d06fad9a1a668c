package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/workstream-hr/workstream/modules/hrm/domain/aggregates/employee"
	"github.com/workstream-hr/workstream/modules/hrm/infrastructure/persistence/models"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/repo"
)

const employeeColumns = "id, tenant_id, first_name, last_name, email, position, department_id, hire_date, created_at, updated_at"

type EmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &EmployeeRepository{}
}

func (r *EmployeeRepository) Count(ctx context.Context, params *employee.FindParams) (int64, error) {
	if params == nil {
		params = &employee.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}

	where, args := employeeFilters(tenantID.String(), params)
	var count int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM employees WHERE `+where,
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EmployeeRepository) GetAll(ctx context.Context) ([]*employee.Employee, error) {
	return r.GetPaginated(ctx, &employee.FindParams{})
}

func (r *EmployeeRepository) GetPaginated(ctx context.Context, params *employee.FindParams) ([]*employee.Employee, error) {
	if params == nil {
		params = &employee.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	where, args := employeeFilters(tenantID.String(), params)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE ` + where + `
		ORDER BY last_name ASC, first_name ASC ` + repo.FormatLimitOffset(params.Limit, params.Offset)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*employee.Employee
	for rows.Next() {
		entity, err := scanEmployee(rows)
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

func (r *EmployeeRepository) GetByID(ctx context.Context, id uint) (*employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE id = $1 AND tenant_id = $2`,
		id, tenantID.String(),
	)
	entity, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, data *employee.Employee) (*employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO employees (tenant_id, first_name, last_name, email, position, department_id, hire_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+employeeColumns,
		tenantID.String(), data.FirstName, data.LastName, data.Email, data.Position, data.DepartmentID, data.HireDate,
	)
	created, err := scanEmployee(row)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, employee.ErrEmailTaken
		}
		return nil, gerrors.Wrap(err, "failed to create employee")
	}
	return created, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, data *employee.Employee) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `
		UPDATE employees
		SET first_name = $1, last_name = $2, email = $3, position = $4, department_id = $5, hire_date = $6, updated_at = now()
		WHERE id = $7 AND tenant_id = $8`,
		data.FirstName, data.LastName, data.Email, data.Position, data.DepartmentID, data.HireDate,
		data.ID, tenantID.String(),
	)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return employee.ErrEmailTaken
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return employee.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepository) UpdateDepartment(ctx context.Context, id, departmentID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `
		UPDATE employees
		SET department_id = $1, updated_at = now()
		WHERE id = $2 AND tenant_id = $3`,
		departmentID, id, tenantID.String(),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return employee.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx,
		`DELETE FROM employees WHERE id = $1 AND tenant_id = $2`,
		id, tenantID.String(),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return employee.ErrNotFound
	}
	return nil
}

// employeeFilters renders the WHERE clause shared by GetPaginated and Count,
// so the paginated total always matches the filtered listing.
func employeeFilters(tenantID string, params *employee.FindParams) (string, []any) {
	where := "tenant_id = $1"
	args := []any{tenantID}
	if params.DepartmentID != 0 {
		args = append(args, params.DepartmentID)
		where += " AND department_id = $2"
	}
	return where, args
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var m models.Employee
	if err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.FirstName,
		&m.LastName,
		&m.Email,
		&m.Position,
		&m.DepartmentID,
		&m.HireDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainEmployee(&m)
}
