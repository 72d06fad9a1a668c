package models

import "time"

type WorkflowRecord struct {
	ID         uint
	TenantID   string
	EmployeeID uint
	Type       string
	Status     string
	Details    []byte
	CreatedAt  time.Time
}
