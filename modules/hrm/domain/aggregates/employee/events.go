package employee

// CreatedEvent is published after an employee is persisted.
type CreatedEvent struct {
	Data   CreateDTO
	Result Employee
}

// UpdatedEvent is published after an employee is updated.
type UpdatedEvent struct {
	Data   UpdateDTO
	Result Employee
}

// DeletedEvent is published after an employee and their workflow records are
// removed.
type DeletedEvent struct {
	Result Employee
}

// TransferRequestedEvent is published when a department transfer is requested
// for an employee. The workflow module records it as a pending Transfer.
type TransferRequestedEvent struct {
	Employee        Employee
	OldDepartmentID uint
	NewDepartmentID uint
	Reason          string
}
