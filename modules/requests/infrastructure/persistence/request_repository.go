package persistence

import (
	"context"
	"errors"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/workstream-hr/workstream/modules/requests/domain/aggregates/request"
	"github.com/workstream-hr/workstream/modules/requests/infrastructure/persistence/models"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/repo"
)

const requestColumns = "id, tenant_id, employee_id, type, status, created_at, updated_at"

type RequestRepository struct{}

func NewRequestRepository() request.Repository {
	return &RequestRepository{}
}

func (r *RequestRepository) Count(ctx context.Context, params *request.FindParams) (int64, error) {
	if params == nil {
		params = &request.FindParams{}
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}

	where, args := requestFilters(tenantID.String(), params)
	var count int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM requests WHERE `+where,
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// requestFilters renders the WHERE clause shared by GetAll and Count, so the
// paginated total always matches the filtered listing.
func requestFilters(tenantID string, params *request.FindParams) (string, []interface{}) {
	where := "tenant_id = $1"
	args := []interface{}{tenantID}
	if params.EmployeeID != 0 {
		args = append(args, params.EmployeeID)
		where += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	return where, args
}

func (r *RequestRepository) GetAll(ctx context.Context, params *request.FindParams) ([]*request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	where, args := requestFilters(tenantID.String(), params)

	rows, err := tx.Query(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		WHERE `+where+`
		ORDER BY created_at DESC, id DESC
		`+repo.FormatLimitOffset(params.Limit, params.Offset),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var heads []models.Request
	for rows.Next() {
		var m models.Request
		if err := rows.Scan(&m.ID, &m.TenantID, &m.EmployeeID, &m.Type, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		heads = append(heads, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(heads) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(heads))
	for _, m := range heads {
		ids = append(ids, m.ID)
	}
	itemsByRequest, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]*request.Request, 0, len(heads))
	for i := range heads {
		entity, err := toDomainRequest(&heads[i], itemsByRequest[heads[i].ID])
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id uint) (*request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	var m models.Request
	err = tx.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		WHERE id = $1 AND tenant_id = $2`,
		id, tenantID.String(),
	).Scan(&m.ID, &m.TenantID, &m.EmployeeID, &m.Type, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, request.ErrNotFound
		}
		return nil, err
	}

	itemsByRequest, err := r.loadItems(ctx, []uint{m.ID})
	if err != nil {
		return nil, err
	}
	return toDomainRequest(&m, itemsByRequest[m.ID])
}

func (r *RequestRepository) Create(ctx context.Context, data *request.Request) (*request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	status := data.Status
	if status == "" {
		status = request.StatusPending
	}

	var m models.Request
	err = tx.QueryRow(ctx, `
		INSERT INTO requests (tenant_id, employee_id, type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+requestColumns,
		tenantID.String(), data.EmployeeID, data.Type, string(status),
	).Scan(&m.ID, &m.TenantID, &m.EmployeeID, &m.Type, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to create request")
	}

	items := make([]models.RequestItem, 0, len(data.Items))
	for _, item := range data.Items {
		itemStatus := item.Status
		if itemStatus == "" {
			itemStatus = status
		}
		var created models.RequestItem
		err = tx.QueryRow(ctx, `
			INSERT INTO request_items (request_id, name, status)
			VALUES ($1, $2, $3)
			RETURNING id, request_id, name, status`,
			m.ID, item.Name, string(itemStatus),
		).Scan(&created.ID, &created.RequestID, &created.Name, &created.Status)
		if err != nil {
			return nil, gerrors.Wrap(err, "failed to create request item")
		}
		items = append(items, created)
	}
	return toDomainRequest(&m, items)
}

func (r *RequestRepository) UpdateStatus(ctx context.Context, id uint, status request.Status) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `
		UPDATE requests
		SET status = $1, updated_at = now()
		WHERE id = $2 AND tenant_id = $3`,
		string(status), id, tenantID.String(),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return request.ErrNotFound
	}

	// Items follow the request.
	_, err = tx.Exec(ctx,
		`UPDATE request_items SET status = $1 WHERE request_id = $2`,
		string(status), id,
	)
	return err
}

func (r *RequestRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM request_items
		WHERE request_id IN (SELECT id FROM requests WHERE id = $1 AND tenant_id = $2)`,
		id, tenantID.String(),
	); err != nil {
		return err
	}
	result, err := tx.Exec(ctx,
		`DELETE FROM requests WHERE id = $1 AND tenant_id = $2`,
		id, tenantID.String(),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return request.ErrNotFound
	}
	return nil
}

func (r *RequestRepository) loadItems(ctx context.Context, requestIDs []uint) (map[uint][]models.RequestItem, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, request_id, name, status
		FROM request_items
		WHERE request_id = ANY($1)
		ORDER BY id ASC`,
		requestIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint][]models.RequestItem, len(requestIDs))
	for rows.Next() {
		var m models.RequestItem
		if err := rows.Scan(&m.ID, &m.RequestID, &m.Name, &m.Status); err != nil {
			return nil, err
		}
		out[m.RequestID] = append(out[m.RequestID], m)
	}
	return out, rows.Err()
}
