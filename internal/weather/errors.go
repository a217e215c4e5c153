package weather

import "errors"

// The upstream failure domains the orchestration layer discriminates on.
// Every error returned by the client wraps exactly one of these.
var (
	// ErrNotFound: the weather endpoint answered 404 for the place.
	ErrNotFound = errors.New("place not found upstream")
	// ErrUpstream: any other non-success status or a malformed payload.
	ErrUpstream = errors.New("upstream weather service failed")
	// ErrConnectivity: the transport itself failed.
	ErrConnectivity = errors.New("network transport failed")
)
