package engine

import (
	"context"
	"reflect"

	"github.com/Konsultn-Engineering/pitwall/database"
	"github.com/Konsultn-Engineering/pitwall/query"
)

// Transactional is the behavior shared by *Transaction and anything that
// wraps one.
type Transactional interface {
	ID() string
	ExecuteQuery(ctx context.Context, q *query.Query) (*database.Result, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

var _ Transactional = (*Transaction)(nil)

// IsValidTransaction reports whether v is a usable transaction value: a
// non-nil Transactional carrying an id.
func IsValidTransaction(v any) bool {
	t, ok := v.(Transactional)
	if !ok || t == nil {
		return false
	}
	if rv := reflect.ValueOf(t); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return false
	}
	return t.ID() != ""
}

// ValidateTransaction returns query.ErrInvalidTransaction unless
// IsValidTransaction(v).
func ValidateTransaction(v any) error {
	if !IsValidTransaction(v) {
		return query.ErrInvalidTransaction
	}
	return nil
}
