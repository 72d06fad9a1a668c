package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/workstream-hr/workstream/modules/workflow/domain/workflowrecord"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/configuration"
)

// fakeTx satisfies pgx.Tx so tenant-transaction scopes can run against the
// in-memory repositories, which never touch the connection.
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

func tenantCtx() context.Context {
	ctx := composables.WithTx(context.Background(), fakeTx{})
	return composables.WithTenantID(ctx, uuid.New())
}

func newWorkflowService(repo *mockWorkflowRepo, departments *mockDepartmentDirectory, publisher *capturingPublisher) *WorkflowService {
	if departments == nil {
		departments = &mockDepartmentDirectory{}
	}
	engine := newEngine(repo, &mockEmployeeDirectory{}, departments, &mockRequestPropagator{}, false)
	sweeper := NewDedupSweeper(repo, configuration.DedupWindowCalendarDay, nil)
	return NewWorkflowService(repo, engine, sweeper, departments, publisher)
}

func TestWorkflowService_CreateDefaultsToPending(t *testing.T) {
	repo := newMockWorkflowRepo()
	publisher := &capturingPublisher{}
	svc := newWorkflowService(repo, nil, publisher)

	created, err := svc.Create(tenantCtx(), &workflowrecord.Record{
		EmployeeID: 10,
		Type:       workflowrecord.TypeOnboarding,
	})
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusPending, created.Status)
	require.Len(t, publisher.events, 1)
	event, ok := publisher.events[0].(*workflowrecord.CreatedEvent)
	require.True(t, ok)
	require.Equal(t, created.ID, event.Result.ID)
}

func TestWorkflowService_CreateRejectsUnknownStatus(t *testing.T) {
	svc := newWorkflowService(newMockWorkflowRepo(), nil, &capturingPublisher{})

	_, err := svc.Create(tenantCtx(), &workflowrecord.Record{
		EmployeeID: 10,
		Type:       workflowrecord.TypeOnboarding,
		Status:     "Archived",
	})
	require.ErrorIs(t, err, workflowrecord.ErrInvalidStatus)
}

func TestWorkflowService_CreateRequiresTenant(t *testing.T) {
	svc := newWorkflowService(newMockWorkflowRepo(), nil, &capturingPublisher{})

	ctx := composables.WithTx(context.Background(), fakeTx{})
	_, err := svc.Create(ctx, &workflowrecord.Record{EmployeeID: 10, Type: workflowrecord.TypeOnboarding})
	require.ErrorIs(t, err, composables.ErrNoTenantID)
}

func TestWorkflowService_UpdateStatusPublishesTransition(t *testing.T) {
	repo := newMockWorkflowRepo(transferRecord(1, 10, 2, 5))
	publisher := &capturingPublisher{}
	departments := &mockDepartmentDirectory{names: map[uint]string{2: "Support", 5: "Platform"}}
	svc := newWorkflowService(repo, departments, publisher)

	updated, err := svc.UpdateStatus(tenantCtx(), 1, workflowrecord.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusApproved, updated.Status)

	require.Len(t, publisher.events, 1)
	event, ok := publisher.events[0].(*workflowrecord.TransitionedEvent)
	require.True(t, ok)
	require.Equal(t, workflowrecord.StatusPending, event.Previous)
	require.Equal(t, workflowrecord.StatusApproved, event.Result.Status)

	// The response carries display names for both departments.
	var details map[string]any
	require.NoError(t, json.Unmarshal(updated.Details, &details))
	require.Equal(t, "Support", details["oldDepartmentName"])
	require.Equal(t, "Platform", details["newDepartmentName"])
}

func TestWorkflowService_RepeatedUpdateDoesNotRepublish(t *testing.T) {
	repo := newMockWorkflowRepo(transferRecord(1, 10, 2, 5))
	publisher := &capturingPublisher{}
	departments := &mockDepartmentDirectory{names: map[uint]string{2: "Support", 5: "Platform"}}
	svc := newWorkflowService(repo, departments, publisher)

	_, err := svc.UpdateStatus(tenantCtx(), 1, workflowrecord.StatusApproved)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(tenantCtx(), 1, workflowrecord.StatusApproved)
	require.NoError(t, err)
	require.Len(t, publisher.events, 1, "an unchanged status is not an event")
}

func TestWorkflowService_GetAllEnrichesWithoutPersisting(t *testing.T) {
	repo := newMockWorkflowRepo(transferRecord(1, 10, 2, 5))
	departments := &mockDepartmentDirectory{names: map[uint]string{2: "Support", 5: "Platform"}}
	svc := newWorkflowService(repo, departments, &capturingPublisher{})

	records, err := svc.GetAll(tenantCtx(), &workflowrecord.FindParams{EmployeeID: 10})
	require.NoError(t, err)
	require.Len(t, records, 1)

	var details map[string]any
	require.NoError(t, json.Unmarshal(records[0].Details, &details))
	require.Equal(t, "Support", details["oldDepartmentName"])
	require.Equal(t, "Platform", details["newDepartmentName"])

	// The stored payload keeps only what was submitted.
	var stored map[string]any
	require.NoError(t, json.Unmarshal(repo.records[1].Details, &stored))
	require.NotContains(t, stored, "oldDepartmentName")
	require.NotContains(t, stored, "newDepartmentName")
}

func TestWorkflowService_EnrichToleratesDeletedDepartments(t *testing.T) {
	repo := newMockWorkflowRepo(transferRecord(1, 10, 2, 5))
	departments := &mockDepartmentDirectory{names: map[uint]string{5: "Platform"}}
	svc := newWorkflowService(repo, departments, &capturingPublisher{})

	records, err := svc.GetAll(tenantCtx(), &workflowrecord.FindParams{EmployeeID: 10})
	require.NoError(t, err)
	require.Len(t, records, 1)

	var details map[string]any
	require.NoError(t, json.Unmarshal(records[0].Details, &details))
	require.NotContains(t, details, "oldDepartmentName")
	require.Equal(t, "Platform", details["newDepartmentName"])
}

func TestWorkflowService_DeleteByEmployee(t *testing.T) {
	repo := newMockWorkflowRepo(
		transferRecord(1, 10, 2, 5),
		transferRecord(2, 10, 5, 6),
		transferRecord(3, 11, 2, 5),
	)
	svc := newWorkflowService(repo, nil, &capturingPublisher{})

	require.NoError(t, svc.DeleteByEmployee(tenantCtx(), 10))
	require.Len(t, repo.records, 1)
	_, ok := repo.records[3]
	require.True(t, ok)
}
