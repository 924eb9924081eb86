package doorman

import "errors"

// Expected failure classes. Contention errors (ErrDoorBusy,
// ErrAllNodesBusy) are ordinary outcomes the caller may retry by
// re-invoking; the rest are fatal for the invocation.
var (
	ErrDoorBusy         = errors.New("door is busy")
	ErrAllNodesBusy     = errors.New("all nodes are busy")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotConfigured    = errors.New("not configured")
	ErrLaunchFailed     = errors.New("launch failed")
)
