package models

import "time"

type Employee struct {
	ID           uint
	TenantID     string
	FirstName    string
	LastName     string
	Email        string
	Position     string
	DepartmentID uint
	HireDate     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Department struct {
	ID          uint
	TenantID    string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
