package query

import (
	"errors"
	"fmt"
)

// Kind is the stable discriminant carried by every pitwall error. Callers
// branch on the Kind, never on the message text.
type Kind string

const (
	KindInvalidQueryTemplate    Kind = "INVALID_QUERY_TEMPLATE"
	KindInconsistentArrayTypes  Kind = "INCONSISTENT_ARRAY_TYPES"
	KindArrayOfUndefined        Kind = "ARRAY_OF_UNDEFINED"
	KindUnhandledArrayType      Kind = "UNHANDLED_ARRAY_TYPE"
	KindUnhandledCase           Kind = "UNHANDLED_CASE"
	KindEmptySQL                Kind = "EMPTY_SQL"
	KindNoTransactionInProgress Kind = "NO_TRANSACTION_IN_PROGRESS"
	KindInvalidTransaction      Kind = "INVALID_TRANSACTION"
)

const errPrefix = "pitwall: "

// Error is returned for composition and transaction misuse. Two errors are
// considered equal by errors.Is when their kinds match, so the sentinels
// below can be used as targets even for errors carrying a detailed message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is a pitwall error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: errPrefix + fmt.Sprintf(format, args...)}
}

// Sentinel errors, one per kind.
var (
	ErrInvalidQueryTemplate = newError(KindInvalidQueryTemplate,
		"invalid query template. This likely means you have an empty query.")

	ErrInconsistentArrayTypes = newError(KindInconsistentArrayTypes,
		"when providing a slice of values, all values must be the same type")

	// ErrArrayOfUndefined usually means a mapping callback forgot to return
	// its query, leaving nil elements behind.
	ErrArrayOfUndefined = newError(KindArrayOfUndefined,
		"invalid query building: slice of nil values. Make sure every element is a query or parameter")

	ErrUnhandledArrayType = newError(KindUnhandledArrayType,
		"query builder unhandled slice element type")

	ErrUnhandledCase = newError(KindUnhandledCase,
		"query builder unhandled case")

	ErrEmptySQL = newError(KindEmptySQL,
		"query execution error: empty SQL")

	ErrNoTransactionInProgress = newError(KindNoTransactionInProgress,
		"no transaction in progress")

	ErrInvalidTransaction = newError(KindInvalidTransaction,
		"invalid transaction")
)

func unhandledArrayType(elem any) *Error {
	return newError(KindUnhandledArrayType,
		"query builder unhandled slice of type %T. Maybe you intended to use Param() or a nested query?", elem)
}

func unhandledCase(value any) *Error {
	return newError(KindUnhandledCase, "query builder unhandled case: %v (%T)", value, value)
}

// KindOf returns the kind of the first pitwall error in err's chain, or the
// empty Kind when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsInvalidQueryTemplateErr returns true if err is or wraps ErrInvalidQueryTemplate.
func IsInvalidQueryTemplateErr(err error) bool {
	return errors.Is(err, ErrInvalidQueryTemplate)
}

// IsEmptySQLErr returns true if err is or wraps ErrEmptySQL.
func IsEmptySQLErr(err error) bool {
	return errors.Is(err, ErrEmptySQL)
}

// IsNoTransactionInProgressErr returns true if err is or wraps ErrNoTransactionInProgress.
func IsNoTransactionInProgressErr(err error) bool {
	return errors.Is(err, ErrNoTransactionInProgress)
}

// IsInvalidTransactionErr returns true if err is or wraps ErrInvalidTransaction.
func IsInvalidTransactionErr(err error) bool {
	return errors.Is(err, ErrInvalidTransaction)
}
