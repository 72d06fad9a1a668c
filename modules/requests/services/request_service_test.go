package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/workstream-hr/workstream/modules/hrm/domain/aggregates/employee"
	"github.com/workstream-hr/workstream/modules/requests/domain/aggregates/request"
	"github.com/workstream-hr/workstream/pkg/composables"
)

type fakeTx struct{}

func (fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return fakeTx{}, nil }
func (fakeTx) Commit(ctx context.Context) error          { return nil }
func (fakeTx) Rollback(ctx context.Context) error        { return nil }
func (fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}
func (fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not implemented")
}
func (fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("not implemented")
}
func (fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}
func (fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (fakeTx) Conn() *pgx.Conn                                               { return nil }

func tenantCtx() context.Context {
	ctx := composables.WithTx(context.Background(), fakeTx{})
	return composables.WithTenantID(ctx, uuid.New())
}

type mockRequestRepo struct {
	requests map[uint]*request.Request
	nextID   uint
}

func newMockRequestRepo(requests ...*request.Request) *mockRequestRepo {
	m := &mockRequestRepo{requests: map[uint]*request.Request{}, nextID: 1}
	for _, r := range requests {
		m.requests[r.ID] = r
		if r.ID >= m.nextID {
			m.nextID = r.ID + 1
		}
	}
	return m
}

func (m *mockRequestRepo) Count(ctx context.Context, params *request.FindParams) (int64, error) {
	if params == nil {
		params = &request.FindParams{}
	}
	matched, err := m.GetAll(ctx, params)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (m *mockRequestRepo) GetAll(ctx context.Context, params *request.FindParams) ([]*request.Request, error) {
	var out []*request.Request
	for _, r := range m.requests {
		if params.EmployeeID != 0 && r.EmployeeID != params.EmployeeID {
			continue
		}
		if params.Status != "" && r.Status != params.Status {
			continue
		}
		copied := *r
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id uint) (*request.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, request.ErrNotFound
	}
	copied := *r
	copied.Items = append([]request.Item(nil), r.Items...)
	return &copied, nil
}

func (m *mockRequestRepo) Create(ctx context.Context, data *request.Request) (*request.Request, error) {
	stored := *data
	stored.ID = m.nextID
	m.nextID++
	if stored.Status == "" {
		stored.Status = request.StatusPending
	}
	for i := range stored.Items {
		stored.Items[i].ID = uint(i + 1)
		stored.Items[i].RequestID = stored.ID
	}
	m.requests[stored.ID] = &stored
	return &stored, nil
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, id uint, status request.Status) error {
	r, ok := m.requests[id]
	if !ok {
		return request.ErrNotFound
	}
	r.Status = status
	for i := range r.Items {
		r.Items[i].Status = status
	}
	return nil
}

func (m *mockRequestRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.requests[id]; !ok {
		return request.ErrNotFound
	}
	delete(m.requests, id)
	return nil
}

type stubEmployeeRepo struct {
	known map[uint]bool
}

func (s *stubEmployeeRepo) Count(ctx context.Context, params *employee.FindParams) (int64, error) {
	return 0, nil
}
func (s *stubEmployeeRepo) GetAll(ctx context.Context) ([]*employee.Employee, error) {
	return nil, nil
}
func (s *stubEmployeeRepo) GetPaginated(ctx context.Context, params *employee.FindParams) ([]*employee.Employee, error) {
	return nil, nil
}
func (s *stubEmployeeRepo) GetByID(ctx context.Context, id uint) (*employee.Employee, error) {
	if !s.known[id] {
		return nil, employee.ErrNotFound
	}
	return &employee.Employee{ID: id}, nil
}
func (s *stubEmployeeRepo) Create(ctx context.Context, data *employee.Employee) (*employee.Employee, error) {
	return data, nil
}
func (s *stubEmployeeRepo) Update(ctx context.Context, data *employee.Employee) error { return nil }
func (s *stubEmployeeRepo) UpdateDepartment(ctx context.Context, id, departmentID uint) error {
	return nil
}
func (s *stubEmployeeRepo) Delete(ctx context.Context, id uint) error { return nil }

type capturingPublisher struct {
	events []interface{}
}

func (p *capturingPublisher) Publish(args ...interface{}) {
	p.events = append(p.events, args...)
}

func (p *capturingPublisher) Subscribe(handler interface{})   {}
func (p *capturingPublisher) Unsubscribe(handler interface{}) {}
func (p *capturingPublisher) Clear()                          {}
func (p *capturingPublisher) SubscribersCount() int           { return 0 }

func TestRequestService_CreateValidatesEmployee(t *testing.T) {
	repo := newMockRequestRepo()
	publisher := &capturingPublisher{}
	svc := NewRequestService(repo, &stubEmployeeRepo{}, publisher)

	_, err := svc.Create(tenantCtx(), &request.CreateDTO{
		EmployeeID: 10,
		Type:       "Equipment Request",
		Items:      []string{"laptop"},
	})
	require.ErrorIs(t, err, employee.ErrNotFound)
	require.Empty(t, repo.requests)
	require.Empty(t, publisher.events)
}

func TestRequestService_CreatePublishesWithPendingItems(t *testing.T) {
	repo := newMockRequestRepo()
	publisher := &capturingPublisher{}
	svc := NewRequestService(repo, &stubEmployeeRepo{known: map[uint]bool{10: true}}, publisher)

	created, err := svc.Create(tenantCtx(), &request.CreateDTO{
		EmployeeID: 10,
		Type:       "Equipment Request",
		Items:      []string{"laptop", "monitor", "dock"},
	})
	require.NoError(t, err)
	require.Equal(t, request.StatusPending, created.Status)
	require.Len(t, created.Items, 3)
	for _, item := range created.Items {
		require.Equal(t, request.StatusPending, item.Status)
	}
	require.Equal(t, []string{"laptop", "monitor", "dock"}, created.ItemNames())

	require.Len(t, publisher.events, 1)
	event, ok := publisher.events[0].(*request.CreatedEvent)
	require.True(t, ok)
	require.Equal(t, created.ID, event.Result.ID)
}

func TestRequestService_UpdateStatusCascadesToItems(t *testing.T) {
	repo := newMockRequestRepo(&request.Request{
		ID:         7,
		EmployeeID: 10,
		Type:       "Equipment Request",
		Status:     request.StatusPending,
		Items: []request.Item{
			{ID: 1, RequestID: 7, Name: "laptop", Status: request.StatusPending},
			{ID: 2, RequestID: 7, Name: "monitor", Status: request.StatusPending},
		},
	})
	publisher := &capturingPublisher{}
	svc := NewRequestService(repo, &stubEmployeeRepo{}, publisher)

	updated, err := svc.UpdateStatus(tenantCtx(), 7, request.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, request.StatusApproved, updated.Status)
	for _, item := range updated.Items {
		require.Equal(t, request.StatusApproved, item.Status)
	}

	require.Len(t, publisher.events, 1)
	event, ok := publisher.events[0].(*request.StatusUpdatedEvent)
	require.True(t, ok)
	require.Equal(t, request.StatusPending, event.Previous)
	require.Equal(t, request.StatusApproved, event.Result.Status)
}

func TestRequestService_UpdateStatusSameStatusIsNoOp(t *testing.T) {
	repo := newMockRequestRepo(&request.Request{
		ID:     7,
		Status: request.StatusApproved,
	})
	publisher := &capturingPublisher{}
	svc := NewRequestService(repo, &stubEmployeeRepo{}, publisher)

	updated, err := svc.UpdateStatus(tenantCtx(), 7, request.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, request.StatusApproved, updated.Status)
	require.Empty(t, publisher.events)
}

func TestRequestService_UpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewRequestService(newMockRequestRepo(), &stubEmployeeRepo{}, &capturingPublisher{})

	_, err := svc.UpdateStatus(tenantCtx(), 7, "Archived")
	require.ErrorIs(t, err, request.ErrInvalidStatus)
}

func TestRequestService_PropagateStatus(t *testing.T) {
	repo := newMockRequestRepo(&request.Request{
		ID:     7,
		Status: request.StatusPending,
		Items:  []request.Item{{ID: 1, RequestID: 7, Name: "laptop", Status: request.StatusPending}},
	})
	svc := NewRequestService(repo, &stubEmployeeRepo{}, &capturingPublisher{})

	require.NoError(t, svc.PropagateStatus(tenantCtx(), 7, "Approved"))
	stored, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, request.StatusApproved, stored.Status)
	require.Equal(t, request.StatusApproved, stored.Items[0].Status)
}

func TestRequestService_PropagateStatusUnknownRequest(t *testing.T) {
	svc := NewRequestService(newMockRequestRepo(), &stubEmployeeRepo{}, &capturingPublisher{})

	err := svc.PropagateStatus(tenantCtx(), 404, "Approved")
	require.ErrorIs(t, err, request.ErrNotFound)
}

func TestRequestService_CountHonorsFilters(t *testing.T) {
	repo := newMockRequestRepo(
		&request.Request{ID: 1, EmployeeID: 10, Status: request.StatusPending},
		&request.Request{ID: 2, EmployeeID: 10, Status: request.StatusApproved},
		&request.Request{ID: 3, EmployeeID: 11, Status: request.StatusPending},
	)
	svc := NewRequestService(repo, &stubEmployeeRepo{}, &capturingPublisher{})

	total, err := svc.Count(tenantCtx(), &request.FindParams{EmployeeID: 10, Status: request.StatusPending})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	all, err := svc.Count(tenantCtx(), &request.FindParams{})
	require.NoError(t, err)
	require.EqualValues(t, 3, all)
}
