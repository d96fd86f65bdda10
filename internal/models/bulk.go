package models

// Failure tags attached to bulk items.
const (
	BulkTagValidation = "validation"
	BulkTagServer     = "server"
	BulkTagNetwork    = "network"
)

// BulkFailure pairs an original input item with the reason it failed.
// Index is the item's position in the caller's input.
type BulkFailure[T any] struct {
	Index int    `json:"index"`
	Item  T      `json:"item"`
	Error string `json:"error"`
	Tag   string `json:"tag,omitempty"`
}

// BulkSummary counts the outcome of a bulk operation.
type BulkSummary struct {
	TotalAttempted int `json:"total_attempted"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
}

// Consistent reports whether successes and failures account for every attempt.
func (s BulkSummary) Consistent() bool {
	return s.Successful+s.Failed == s.TotalAttempted
}

// Partial reports whether some but not all items succeeded.
func (s BulkSummary) Partial() bool {
	return s.Successful > 0 && s.Failed > 0
}

// BulkCreateRequest is the batch payload for POST /users/bulk.
type BulkCreateRequest struct {
	Users            []UserCreate `json:"users"`
	SendWelcomeEmail bool         `json:"send_welcome_email,omitempty"`
}

// BulkDeleteRequest is the batch payload for POST /users/bulk-delete.
type BulkDeleteRequest struct {
	UserIDs []int64 `json:"user_ids"`
}

// BulkCreateResult is the aggregate outcome of a bulk create. A result with
// failures is a valid terminal state, not an error.
type BulkCreateResult struct {
	Created []User                    `json:"created"`
	Failed  []BulkFailure[UserCreate] `json:"failed"`
	Summary BulkSummary               `json:"summary"`
}

// BulkDeleteResult is the aggregate outcome of a bulk delete.
type BulkDeleteResult struct {
	Deleted []int64              `json:"deleted"`
	Failed  []BulkFailure[int64] `json:"failed"`
	Summary BulkSummary          `json:"summary"`
}
