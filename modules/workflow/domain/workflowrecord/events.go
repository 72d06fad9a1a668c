package workflowrecord

// CreatedEvent is published after a workflow record is persisted.
type CreatedEvent struct {
	Result Record
}

// TransitionedEvent is published after a status transition takes effect.
type TransitionedEvent struct {
	Previous Status
	Result   Record
}

// DeletedEvent is published after a workflow record is removed.
type DeletedEvent struct {
	Result Record
}
