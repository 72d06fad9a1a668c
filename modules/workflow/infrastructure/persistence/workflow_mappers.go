package persistence

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/workstream-hr/workstream/modules/workflow/domain/workflowrecord"
	"github.com/workstream-hr/workstream/modules/workflow/infrastructure/persistence/models"
)

func toDomainWorkflowRecord(row *models.WorkflowRecord) (*workflowrecord.Record, error) {
	tenantID, err := uuid.Parse(row.TenantID)
	if err != nil {
		return nil, err
	}
	return &workflowrecord.Record{
		ID:         row.ID,
		TenantID:   tenantID,
		EmployeeID: row.EmployeeID,
		Type:       row.Type,
		Status:     workflowrecord.Status(row.Status),
		Details:    json.RawMessage(row.Details),
		CreatedAt:  row.CreatedAt,
	}, nil
}

func toDBWorkflowRecord(entity *workflowrecord.Record) *models.WorkflowRecord {
	return &models.WorkflowRecord{
		ID:         entity.ID,
		TenantID:   entity.TenantID.String(),
		EmployeeID: entity.EmployeeID,
		Type:       entity.Type,
		Status:     string(entity.Status),
		Details:    []byte(entity.Details),
		CreatedAt:  entity.CreatedAt,
	}
}
