package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/workstream-hr/workstream/modules/workflow/domain/workflowrecord"
)

type mockWorkflowRepo struct {
	records map[uint]*workflowrecord.Record
	// conditionalLosers simulates a concurrent transition winning the
	// conditional write for the listed record ids.
	conditionalLosers map[uint]bool
	updateCalls       int
}

func newMockWorkflowRepo(records ...*workflowrecord.Record) *mockWorkflowRepo {
	m := &mockWorkflowRepo{
		records:           map[uint]*workflowrecord.Record{},
		conditionalLosers: map[uint]bool{},
	}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return m
}

func (m *mockWorkflowRepo) Create(ctx context.Context, record *workflowrecord.Record) (*workflowrecord.Record, error) {
	stored := *record
	stored.ID = uint(len(m.records) + 1)
	if stored.Status == "" {
		stored.Status = workflowrecord.StatusPending
	}
	m.records[stored.ID] = &stored
	return &stored, nil
}

func (m *mockWorkflowRepo) GetByID(ctx context.Context, id uint) (*workflowrecord.Record, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, workflowrecord.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *mockWorkflowRepo) GetAll(ctx context.Context, params *workflowrecord.FindParams) ([]*workflowrecord.Record, error) {
	var out []*workflowrecord.Record
	for _, r := range m.records {
		if params.EmployeeID != 0 && r.EmployeeID != params.EmployeeID {
			continue
		}
		if params.Type != "" && r.Type != params.Type {
			continue
		}
		copied := *r
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockWorkflowRepo) GetByEmployee(ctx context.Context, employeeID uint) ([]*workflowrecord.Record, error) {
	return m.GetAll(ctx, &workflowrecord.FindParams{EmployeeID: employeeID})
}

func (m *mockWorkflowRepo) ListByTypeAscending(ctx context.Context, recordType string) ([]*workflowrecord.Record, error) {
	out, err := m.GetAll(ctx, &workflowrecord.FindParams{Type: recordType})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockWorkflowRepo) UpdateStatusIf(ctx context.Context, id uint, from, to workflowrecord.Status, details json.RawMessage) (bool, error) {
	m.updateCalls++
	record, ok := m.records[id]
	if !ok {
		return false, nil
	}
	if m.conditionalLosers[id] || record.Status != from {
		return false, nil
	}
	record.Status = to
	if len(details) > 0 {
		record.Details = details
	}
	return true, nil
}

func (m *mockWorkflowRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.records[id]; !ok {
		return workflowrecord.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockWorkflowRepo) DeleteMany(ctx context.Context, ids []uint) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if _, ok := m.records[id]; ok {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockWorkflowRepo) DeleteByEmployee(ctx context.Context, employeeID uint) error {
	for id, r := range m.records {
		if r.EmployeeID == employeeID {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *mockWorkflowRepo) Count(ctx context.Context, params *workflowrecord.FindParams) (int64, error) {
	if params == nil {
		params = &workflowrecord.FindParams{}
	}
	matched, err := m.GetAll(ctx, params)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

type mockEmployeeDirectory struct {
	reassignments map[uint]uint
	err           error
}

func (m *mockEmployeeDirectory) ReassignDepartment(ctx context.Context, employeeID, departmentID uint) error {
	if m.err != nil {
		return m.err
	}
	if m.reassignments == nil {
		m.reassignments = map[uint]uint{}
	}
	m.reassignments[employeeID] = departmentID
	return nil
}

type mockDepartmentDirectory struct {
	names map[uint]string
}

func (m *mockDepartmentDirectory) GetName(ctx context.Context, id uint) (string, error) {
	name, ok := m.names[id]
	if !ok {
		return "", fmt.Errorf("department %d: %w", id, NotFoundSideEffect)
	}
	return name, nil
}

type mockRequestPropagator struct {
	calls map[uint]string
	err   error
}

func (m *mockRequestPropagator) PropagateStatus(ctx context.Context, requestID uint, status string) error {
	if m.err != nil {
		return m.err
	}
	if m.calls == nil {
		m.calls = map[uint]string{}
	}
	m.calls[requestID] = status
	return nil
}

func newEngine(repo *mockWorkflowRepo, employees *mockEmployeeDirectory, departments *mockDepartmentDirectory, requests *mockRequestPropagator, strict bool) *TransitionEngine {
	if employees == nil {
		employees = &mockEmployeeDirectory{}
	}
	if departments == nil {
		departments = &mockDepartmentDirectory{}
	}
	if requests == nil {
		requests = &mockRequestPropagator{}
	}
	return NewTransitionEngine(repo, employees, departments, requests, strict)
}

func transferRecord(id, employeeID, oldDept, newDept uint) *workflowrecord.Record {
	details, _ := json.Marshal(map[string]any{
		"oldDepartmentId": oldDept,
		"newDepartmentId": newDept,
	})
	return &workflowrecord.Record{
		ID:         id,
		EmployeeID: employeeID,
		Type:       workflowrecord.TypeTransfer,
		Status:     workflowrecord.StatusPending,
		Details:    details,
	}
}

func TestTransitionEngine_RejectsInvalidTargetStatus(t *testing.T) {
	record := transferRecord(1, 10, 2, 5)
	record.Status = workflowrecord.StatusApproved
	repo := newMockWorkflowRepo(record)
	engine := newEngine(repo, nil, nil, nil, false)

	for _, status := range []workflowrecord.Status{workflowrecord.StatusPending, workflowrecord.StatusCompleted, "Bogus"} {
		_, err := engine.Apply(context.Background(), 1, status)
		require.ErrorIs(t, err, ErrTransitionTarget)
	}
	require.Zero(t, repo.updateCalls)
}

func TestTransitionEngine_SameStatusIsNoOpForEveryStatus(t *testing.T) {
	statuses := []workflowrecord.Status{
		workflowrecord.StatusPending,
		workflowrecord.StatusApproved,
		workflowrecord.StatusRejected,
		workflowrecord.StatusCompleted,
	}
	for _, status := range statuses {
		record := transferRecord(1, 10, 2, 5)
		record.Status = status
		repo := newMockWorkflowRepo(record)
		employees := &mockEmployeeDirectory{err: errors.New("should not be called")}
		requests := &mockRequestPropagator{err: errors.New("should not be called")}
		engine := newEngine(repo, employees, nil, requests, false)

		result, err := engine.Apply(context.Background(), 1, status)
		require.NoError(t, err, "status %s", status)
		require.Equal(t, status, result.Status)
		require.Zero(t, repo.updateCalls, "re-applying the current status must not write")
	}
}

func TestTransitionEngine_ApproveTransferReassignsAndAnnotates(t *testing.T) {
	repo := newMockWorkflowRepo(transferRecord(1, 10, 2, 5))
	employees := &mockEmployeeDirectory{}
	departments := &mockDepartmentDirectory{names: map[uint]string{5: "Platform Engineering"}}
	engine := newEngine(repo, employees, departments, nil, false)

	result, err := engine.Apply(context.Background(), 1, workflowrecord.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusApproved, result.Status)
	require.Equal(t, uint(5), employees.reassignments[10])

	var details map[string]any
	require.NoError(t, json.Unmarshal(result.Details, &details))
	require.Equal(t, "Platform Engineering", details["newDepartmentName"])
	require.EqualValues(t, 2, details["oldDepartmentId"])
	require.EqualValues(t, 5, details["newDepartmentId"])

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusApproved, stored.Status)
}

func TestTransitionEngine_RejectTransferLeavesDepartmentAlone(t *testing.T) {
	repo := newMockWorkflowRepo(transferRecord(1, 10, 2, 5))
	employees := &mockEmployeeDirectory{}
	engine := newEngine(repo, employees, &mockDepartmentDirectory{names: map[uint]string{5: "Platform"}}, nil, false)

	result, err := engine.Apply(context.Background(), 1, workflowrecord.StatusRejected)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusRejected, result.Status)
	require.Empty(t, employees.reassignments)

	// Details stay exactly as submitted.
	decoded, ok := result.DecodedDetails().(workflowrecord.TransferDetails)
	require.True(t, ok)
	require.Empty(t, decoded.NewDepartmentName)
}

func TestTransitionEngine_RepeatedTransitionIsNoOp(t *testing.T) {
	repo := newMockWorkflowRepo(transferRecord(1, 10, 2, 5))
	employees := &mockEmployeeDirectory{}
	engine := newEngine(repo, employees, &mockDepartmentDirectory{names: map[uint]string{5: "Platform"}}, nil, false)

	_, err := engine.Apply(context.Background(), 1, workflowrecord.StatusApproved)
	require.NoError(t, err)
	first := repo.updateCalls

	result, err := engine.Apply(context.Background(), 1, workflowrecord.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusApproved, result.Status)
	require.Equal(t, first, repo.updateCalls, "second identical transition must not write")
}

func TestTransitionEngine_ApproveTransferWithoutTarget(t *testing.T) {
	record := &workflowrecord.Record{
		ID:         1,
		EmployeeID: 10,
		Type:       workflowrecord.TypeEmployeeTransfer,
		Status:     workflowrecord.StatusPending,
		Details:    json.RawMessage(`{"oldDepartmentId": 2}`),
	}
	repo := newMockWorkflowRepo(record)
	engine := newEngine(repo, nil, nil, nil, false)

	_, err := engine.Apply(context.Background(), 1, workflowrecord.StatusApproved)
	require.ErrorIs(t, err, ErrMissingTransferTarget)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusPending, stored.Status, "failed side effect must not advance the status")
}

func TestTransitionEngine_ApproveTransferUnknownDepartment(t *testing.T) {
	repo := newMockWorkflowRepo(transferRecord(1, 10, 2, 99))
	engine := newEngine(repo, nil, &mockDepartmentDirectory{names: map[uint]string{5: "Platform"}}, nil, false)

	_, err := engine.Apply(context.Background(), 1, workflowrecord.StatusApproved)
	require.ErrorIs(t, err, ErrTransferTargetNotFound)
}

func TestTransitionEngine_ApprovalPropagatesToRequest(t *testing.T) {
	record := &workflowrecord.Record{
		ID:         2,
		EmployeeID: 10,
		Type:       workflowrecord.TypeRequestApproval,
		Status:     workflowrecord.StatusPending,
		Details:    json.RawMessage(`{"requestId": 7, "requestType": "Equipment", "items": ["laptop", "monitor", "dock"]}`),
	}
	repo := newMockWorkflowRepo(record)
	requests := &mockRequestPropagator{}
	engine := newEngine(repo, nil, nil, requests, false)

	result, err := engine.Apply(context.Background(), 2, workflowrecord.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusApproved, result.Status)
	require.Equal(t, "Approved", requests.calls[7])
}

func TestTransitionEngine_RejectionPropagatesToRequest(t *testing.T) {
	record := &workflowrecord.Record{
		ID:         2,
		EmployeeID: 10,
		Type:       workflowrecord.TypeRequestApproval,
		Status:     workflowrecord.StatusPending,
		Details:    json.RawMessage(`{"requestId": 7}`),
	}
	repo := newMockWorkflowRepo(record)
	requests := &mockRequestPropagator{}
	engine := newEngine(repo, nil, nil, requests, false)

	_, err := engine.Apply(context.Background(), 2, workflowrecord.StatusRejected)
	require.NoError(t, err)
	require.Equal(t, "Rejected", requests.calls[7])
}

func TestTransitionEngine_ApprovalWithoutRequestIDSkipsPropagation(t *testing.T) {
	record := &workflowrecord.Record{
		ID:         2,
		EmployeeID: 10,
		Type:       workflowrecord.TypeRequestApproval,
		Status:     workflowrecord.StatusPending,
		Details:    json.RawMessage(`{"note": "manual entry"}`),
	}
	repo := newMockWorkflowRepo(record)
	requests := &mockRequestPropagator{err: errors.New("should not be called")}
	engine := newEngine(repo, nil, nil, requests, false)

	result, err := engine.Apply(context.Background(), 2, workflowrecord.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusApproved, result.Status)
}

func TestTransitionEngine_MissingRequestSwallowedByDefault(t *testing.T) {
	record := &workflowrecord.Record{
		ID:         2,
		EmployeeID: 10,
		Type:       workflowrecord.TypeRequestApproval,
		Status:     workflowrecord.StatusPending,
		Details:    json.RawMessage(`{"requestId": 404}`),
	}
	repo := newMockWorkflowRepo(record)
	requests := &mockRequestPropagator{err: fmt.Errorf("request 404: %w", NotFoundSideEffect)}
	engine := newEngine(repo, nil, nil, requests, false)

	result, err := engine.Apply(context.Background(), 2, workflowrecord.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusApproved, result.Status)
}

func TestTransitionEngine_MissingRequestFailsWhenStrict(t *testing.T) {
	record := &workflowrecord.Record{
		ID:         2,
		EmployeeID: 10,
		Type:       workflowrecord.TypeRequestApproval,
		Status:     workflowrecord.StatusPending,
		Details:    json.RawMessage(`{"requestId": 404}`),
	}
	repo := newMockWorkflowRepo(record)
	requests := &mockRequestPropagator{err: fmt.Errorf("request 404: %w", NotFoundSideEffect)}
	engine := newEngine(repo, nil, nil, requests, true)

	_, err := engine.Apply(context.Background(), 2, workflowrecord.StatusApproved)
	require.ErrorIs(t, err, ErrPropagationFailed)

	stored, err := repo.GetByID(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusPending, stored.Status)
}

func TestTransitionEngine_TransientPropagationErrorSurfaces(t *testing.T) {
	record := &workflowrecord.Record{
		ID:         2,
		EmployeeID: 10,
		Type:       workflowrecord.TypeRequestApproval,
		Status:     workflowrecord.StatusPending,
		Details:    json.RawMessage(`{"requestId": 7}`),
	}
	repo := newMockWorkflowRepo(record)
	boom := errors.New("connection reset")
	engine := newEngine(repo, nil, nil, &mockRequestPropagator{err: boom}, false)

	_, err := engine.Apply(context.Background(), 2, workflowrecord.StatusApproved)
	require.ErrorIs(t, err, boom)
}

func TestTransitionEngine_InformationalTypesHaveNoSideEffects(t *testing.T) {
	record := &workflowrecord.Record{
		ID:         3,
		EmployeeID: 10,
		Type:       workflowrecord.TypeOnboarding,
		Status:     workflowrecord.StatusPending,
	}
	repo := newMockWorkflowRepo(record)
	employees := &mockEmployeeDirectory{err: errors.New("should not be called")}
	requests := &mockRequestPropagator{err: errors.New("should not be called")}
	engine := newEngine(repo, employees, nil, requests, false)

	result, err := engine.Apply(context.Background(), 3, workflowrecord.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, workflowrecord.StatusApproved, result.Status)
}

func TestTransitionEngine_ConcurrentLoserReturnsStoredRecord(t *testing.T) {
	record := transferRecord(1, 10, 2, 5)
	repo := newMockWorkflowRepo(record)
	repo.conditionalLosers[1] = true
	// Simulate the winner having already rejected the record.
	repo.records[1].Status = workflowrecord.StatusPending
	engine := newEngine(repo, &mockEmployeeDirectory{}, &mockDepartmentDirectory{names: map[uint]string{5: "Platform"}}, nil, false)

	result, err := engine.Apply(context.Background(), 1, workflowrecord.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, repo.records[1].Status, result.Status, "loser reports whatever the winner stored")
}

func TestTransitionEngine_UnknownRecord(t *testing.T) {
	engine := newEngine(newMockWorkflowRepo(), nil, nil, nil, false)
	_, err := engine.Apply(context.Background(), 42, workflowrecord.StatusApproved)
	require.ErrorIs(t, err, workflowrecord.ErrNotFound)
}
