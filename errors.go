package authgraph

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a GraphError. Values correspond 1:1 to spec §7's
// error kinds.
type ErrorCode int

const (
	_ ErrorCode = iota
	// ErrorCodeScopeMismatch is raised by is_scope_supported-equivalent
	// checks when a scoped Perm/Ability is used outside a covering scope.
	ErrorCodeScopeMismatch
	// ErrorCodeUnsupportedPerm is raised when activating an ability with a
	// perm it does not support.
	ErrorCodeUnsupportedPerm
	// ErrorCodeGlobalGroupConflict is raised by MakeGlobal without force
	// when another global group already exists.
	ErrorCodeGlobalGroupConflict
	// ErrorCodeCycleDetected is raised when setting Inherits or SubsetOf
	// would create a cycle.
	ErrorCodeCycleDetected
	// ErrorCodeNotFound is raised by a lookup/mutation referencing a
	// nonexistent node.
	ErrorCodeNotFound
	// ErrorCodeStoreError wraps a backend Store failure verbatim.
	ErrorCodeStoreError
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeScopeMismatch:
		return "ScopeMismatch"
	case ErrorCodeUnsupportedPerm:
		return "UnsupportedPerm"
	case ErrorCodeGlobalGroupConflict:
		return "GlobalGroupConflict"
	case ErrorCodeCycleDetected:
		return "CycleDetected"
	case ErrorCodeNotFound:
		return "NotFound"
	case ErrorCodeStoreError:
		return "StoreError"
	default:
		return "Unknown"
	}
}

// GraphError is the typed error authgraph's mutating operations return on
// failure. Mutators stop at the first failing Store call; Store calls that
// already succeeded in the same operation are not rolled back.
type GraphError struct {
	Code    ErrorCode
	Message string
	Err     error // wrapped cause, if any (e.g. a graph.Store error)
}

func (e *GraphError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authgraph: %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("authgraph: %s: %s", e.Code, e.Message)
}

func (e *GraphError) Unwrap() error { return e.Err }

func newGraphError(code ErrorCode, format string, args ...any) *GraphError {
	return &GraphError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapStoreError(err error) *GraphError {
	return &GraphError{Code: ErrorCodeStoreError, Message: "graph store operation failed", Err: err}
}

// IsScopeMismatch returns true if err is or wraps a ScopeMismatch GraphError.
func IsScopeMismatch(err error) bool { return hasCode(err, ErrorCodeScopeMismatch) }

// IsUnsupportedPerm returns true if err is or wraps an UnsupportedPerm GraphError.
func IsUnsupportedPerm(err error) bool { return hasCode(err, ErrorCodeUnsupportedPerm) }

// IsGlobalGroupConflict returns true if err is or wraps a GlobalGroupConflict GraphError.
func IsGlobalGroupConflict(err error) bool { return hasCode(err, ErrorCodeGlobalGroupConflict) }

// IsCycleDetected returns true if err is or wraps a CycleDetected GraphError.
func IsCycleDetected(err error) bool { return hasCode(err, ErrorCodeCycleDetected) }

// IsNotFound returns true if err is or wraps a NotFound GraphError.
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsStoreError returns true if err is or wraps a StoreError GraphError.
func IsStoreError(err error) bool { return hasCode(err, ErrorCodeStoreError) }

func hasCode(err error, code ErrorCode) bool {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}
