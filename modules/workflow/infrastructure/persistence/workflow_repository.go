package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/workstream-hr/workstream/modules/workflow/domain/workflowrecord"
	"github.com/workstream-hr/workstream/modules/workflow/infrastructure/persistence/models"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/repo"
)

const workflowColumns = "id, tenant_id, employee_id, type, status, details, created_at"

type WorkflowRepository struct{}

func NewWorkflowRepository() workflowrecord.Repository {
	return &WorkflowRepository{}
}

func (r *WorkflowRepository) Create(ctx context.Context, record *workflowrecord.Record) (*workflowrecord.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	status := record.Status
	if status == "" {
		status = workflowrecord.StatusPending
	}
	details := record.Details
	if len(details) == 0 {
		details = json.RawMessage("{}")
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO workflow_records (tenant_id, employee_id, type, status, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+workflowColumns,
		tenantID.String(), record.EmployeeID, record.Type, string(status), []byte(details),
	)
	created, err := scanWorkflowRecord(row)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create workflow record")
	}
	return created, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id uint) (*workflowrecord.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		SELECT `+workflowColumns+`
		FROM workflow_records
		WHERE id = $1 AND tenant_id = $2`,
		id, tenantID.String(),
	)
	record, err := scanWorkflowRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workflowrecord.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *WorkflowRepository) GetAll(ctx context.Context, params *workflowrecord.FindParams) ([]*workflowrecord.Record, error) {
	if params == nil {
		params = &workflowrecord.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	where, args := workflowFilters(tenantID.String(), params)

	query := `
		SELECT ` + workflowColumns + `
		FROM workflow_records
		WHERE ` + where + `
		ORDER BY created_at DESC, id DESC ` + repo.FormatLimitOffset(params.Limit, params.Offset)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorkflowRecords(rows)
}

func (r *WorkflowRepository) GetByEmployee(ctx context.Context, employeeID uint) ([]*workflowrecord.Record, error) {
	return r.GetAll(ctx, &workflowrecord.FindParams{EmployeeID: employeeID})
}

func (r *WorkflowRepository) ListByTypeAscending(ctx context.Context, recordType string) ([]*workflowrecord.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+workflowColumns+`
		FROM workflow_records
		WHERE type = $1
		ORDER BY created_at ASC, id ASC`,
		recordType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorkflowRecords(rows)
}

func (r *WorkflowRepository) UpdateStatusIf(ctx context.Context, id uint, from, to workflowrecord.Status, details json.RawMessage) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return false, err
	}

	var tag string
	var args []any
	if len(details) > 0 {
		tag = `
			UPDATE workflow_records
			SET status = $1, details = $2
			WHERE id = $3 AND tenant_id = $4 AND status = $5`
		args = []any{string(to), []byte(details), id, tenantID.String(), string(from)}
	} else {
		tag = `
			UPDATE workflow_records
			SET status = $1
			WHERE id = $2 AND tenant_id = $3 AND status = $4`
		args = []any{string(to), id, tenantID.String(), string(from)}
	}

	result, err := tx.Exec(ctx, tag, args...)
	if err != nil {
		return false, gerrors.Wrap(err, "failed to update workflow status")
	}
	return result.RowsAffected() == 1, nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx,
		`DELETE FROM workflow_records WHERE id = $1 AND tenant_id = $2`,
		id, tenantID.String(),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return workflowrecord.ErrNotFound
	}
	return nil
}

func (r *WorkflowRepository) DeleteMany(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	result, err := tx.Exec(ctx,
		`DELETE FROM workflow_records WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (r *WorkflowRepository) DeleteByEmployee(ctx context.Context, employeeID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM workflow_records WHERE employee_id = $1 AND tenant_id = $2`,
		employeeID, tenantID.String(),
	)
	return err
}

func (r *WorkflowRepository) Count(ctx context.Context, params *workflowrecord.FindParams) (int64, error) {
	if params == nil {
		params = &workflowrecord.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}

	where, args := workflowFilters(tenantID.String(), params)
	var count int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM workflow_records WHERE `+where,
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// workflowFilters renders the WHERE clause shared by GetAll and Count, so the
// paginated total always matches the filtered listing.
func workflowFilters(tenantID string, params *workflowrecord.FindParams) (string, []any) {
	where := "tenant_id = $1"
	args := []any{tenantID}
	if params.EmployeeID != 0 {
		args = append(args, params.EmployeeID)
		where += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if params.Type != "" {
		args = append(args, params.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	return where, args
}

func scanWorkflowRecord(row pgx.Row) (*workflowrecord.Record, error) {
	var m models.WorkflowRecord
	if err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.EmployeeID,
		&m.Type,
		&m.Status,
		&m.Details,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainWorkflowRecord(&m)
}

func collectWorkflowRecords(rows pgx.Rows) ([]*workflowrecord.Record, error) {
	var results []*workflowrecord.Record
	for rows.Next() {
		var m models.WorkflowRecord
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.EmployeeID,
			&m.Type,
			&m.Status,
			&m.Details,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		entity, err := toDomainWorkflowRecord(&m)
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
