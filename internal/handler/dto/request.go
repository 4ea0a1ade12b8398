package dto

// ReturnTaskRequest represents the request body for POST /tasks/{id}/return.
type ReturnTaskRequest struct {
	Comment string `json:"comment"`
}

// PenaltyRequest represents the request body for POST /tasks/{id}/penalty.
type PenaltyRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ReviewQueueFilters represents query parameters for GET /review-queue.
type ReviewQueueFilters struct {
	DispatcherID *string
	Limit        int
	Offset       int
}
