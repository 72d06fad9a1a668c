package models

import "time"

type Request struct {
	ID         uint
	TenantID   string
	EmployeeID uint
	Type       string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type RequestItem struct {
	ID        uint
	RequestID uint
	Name      string
	Status    string
}
