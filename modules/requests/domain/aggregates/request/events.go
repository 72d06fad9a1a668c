package request

type CreatedEvent struct {
	Result Request
}

type StatusUpdatedEvent struct {
	Previous Status
	Result   Request
}

type DeletedEvent struct {
	Result Request
}
