package mes

import (
	"errors"
	"fmt"
)

// Sentinel errors for the client and warehouse directory.
var (
	// ErrNotAuthenticated is returned when a data call is attempted before a
	// successful login.
	ErrNotAuthenticated = errors.New("not authenticated with MES")

	// ErrNotFound is returned when a warehouse code is absent from the
	// fetched warehouse master.
	ErrNotFound = errors.New("not found")

	// ErrDirectoryUnavailable is returned when the warehouse master fetch
	// did not produce a usable mapping.
	ErrDirectoryUnavailable = errors.New("warehouse directory unavailable")
)

// RemoteError is a failure reported by, or while talking to, the MES.
//
// Transport failures (network, timeout, HTTP status >= 400, unparseable
// response) carry the HTTP status and whatever body the server returned.
// Business rejections (a response with success=false) carry status 0 and the
// MES-provided message.
type RemoteError struct {
	Endpoint string
	Status   int
	Msg      string
	Body     string
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s failed (status=%d): %s", e.Endpoint, e.Status, e.Msg)
	}
	return e.Msg
}

// Transport reports whether the failure happened below the business level.
func (e *RemoteError) Transport() bool {
	return e.Status > 0
}
