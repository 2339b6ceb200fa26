package task

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when no task has the requested id.
var ErrNotFound = errors.New("task not found")

var ErrAlreadyExists = errors.New("task already exists")

type DeleteResult string

const (
	ResultDeleted  DeleteResult = "deleted"
	ResultNotFound DeleteResult = "not_found"
)

// DeleteReceipt is the store's acknowledgement of a delete call.
type DeleteReceipt struct {
	ID      string       `json:"_id"`
	Result  DeleteResult `json:"result"`
	Version int64        `json:"_version"`
}

// Store is the backing storage for task records. Get signals absence either
// with an error matching ErrNotFound or with a nil task and nil error.
//
//go:generate mockgen -destination=mocks/store_mock.go -package=mocks . Store,ContextSource
type Store interface {
	Get(ctx context.Context, id string) (*Task, error)
	Delete(ctx context.Context, id string) (*DeleteReceipt, error)
}

type ListFilter struct {
	State   State
	ModelID string
	Limit   int
}

// Matches reports whether t passes the state and model filters. Limit is
// applied by the caller.
func (f ListFilter) Matches(t *Task) bool {
	if f.State != "" && t.State != f.State {
		return false
	}
	if f.ModelID != "" && t.ModelID != f.ModelID {
		return false
	}
	return true
}
