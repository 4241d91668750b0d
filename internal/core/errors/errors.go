package errors

import "errors"

// Domain errors for the realtime core.
var (
	// Decode boundary
	ErrMalformedFrame = errors.New("malformed frame")
	ErrMissingType    = errors.New("frame has no string type field")

	// Transport
	ErrTransportClosed = errors.New("transport closed")
	ErrAlreadyRunning  = errors.New("transport already running")
	ErrMalformedToken  = errors.New("malformed access token")

	// REST boundary
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("resource not found")
)
