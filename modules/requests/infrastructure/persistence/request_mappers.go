package persistence

import (
	"github.com/google/uuid"

	"github.com/workstream-hr/workstream/modules/requests/domain/aggregates/request"
	"github.com/workstream-hr/workstream/modules/requests/infrastructure/persistence/models"
)

func toDomainRequest(row *models.Request, items []models.RequestItem) (*request.Request, error) {
	tenantID, err := uuid.Parse(row.TenantID)
	if err != nil {
		return nil, err
	}
	domainItems := make([]request.Item, 0, len(items))
	for _, item := range items {
		domainItems = append(domainItems, request.Item{
			ID:        item.ID,
			RequestID: item.RequestID,
			Name:      item.Name,
			Status:    request.Status(item.Status),
		})
	}
	return &request.Request{
		ID:         row.ID,
		TenantID:   tenantID,
		EmployeeID: row.EmployeeID,
		Type:       row.Type,
		Status:     request.Status(row.Status),
		Items:      domainItems,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
