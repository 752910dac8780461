// Package liberrors defines the typed error taxonomy returned by the
// control plane, and the mapping from each error kind to an RTSP status
// code.
package liberrors

import (
	"fmt"
	"net"

	"github.com/rtspgateway/rtspgateway/pkg/base"
)

// ErrMalformedRequest is returned when a request cannot be parsed, or is
// syntactically well formed but violates a protocol constraint.
type ErrMalformedRequest struct {
	Err error
}

// Error implements the error interface.
func (e ErrMalformedRequest) Error() string {
	return fmt.Sprintf("malformed request: %v", e.Err)
}

// Unwrap allows errors.Is/errors.As to reach the wrapped cause.
func (e ErrMalformedRequest) Unwrap() error {
	return e.Err
}

// ErrUnauthorized is returned when a request targets a protected source
// and carries no Authorization header.
type ErrUnauthorized struct{}

// Error implements the error interface.
func (e ErrUnauthorized) Error() string {
	return "authentication required"
}

// ErrForbidden is returned when a request carries an Authorization header
// whose credentials are wrong.
type ErrForbidden struct {
	Err error
}

// Error implements the error interface.
func (e ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %v", e.Err)
}

// ErrNotFound is returned when a request targets an unknown source or track.
type ErrNotFound struct {
	Path string
}

// Error implements the error interface.
func (e ErrNotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// ErrMethodNotAllowed is returned for an unknown method token, or a known
// method the source is not ready to serve yet (e.g. DESCRIBE before the
// source has published a description).
type ErrMethodNotAllowed struct {
	Method base.Method
}

// Error implements the error interface.
func (e ErrMethodNotAllowed) Error() string {
	return fmt.Sprintf("method not allowed: %v", e.Method)
}

// ErrSessionNotFound is returned when a Session header names a session
// token that is not (or no longer) present in the session registry.
type ErrSessionNotFound struct {
	Session string
}

// Error implements the error interface.
func (e ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.Session)
}

// ErrPreconditionFailed is returned when a SETUP or PLAY targets a source
// that exists but is not ready to serve it (no upstream connection yet).
type ErrPreconditionFailed struct {
	Reason string
}

// Error implements the error interface.
func (e ErrPreconditionFailed) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.Reason)
}

// ErrUnsupportedTransport is returned when the Transport header offers no
// delivery method the server can satisfy.
type ErrUnsupportedTransport struct {
	Err error
}

// Error implements the error interface.
func (e ErrUnsupportedTransport) Error() string {
	return fmt.Sprintf("unsupported transport: %v", e.Err)
}

// ErrVersionNotSupported is returned when a request line names an RTSP
// version other than 1.0.
type ErrVersionNotSupported struct {
	Version base.Version
}

// Error implements the error interface.
func (e ErrVersionNotSupported) Error() string {
	return fmt.Sprintf("RTSP version not supported: %v", e.Version)
}

// ErrServerTerminated is returned by blocking server calls once Close has
// been invoked.
type ErrServerTerminated struct{}

// Error implements the error interface.
func (e ErrServerTerminated) Error() string {
	return "terminated"
}

// ErrInvalidState is returned when a method is valid in general but not
// from the session's current state (e.g. PLAY before any track is set up).
type ErrInvalidState struct {
	AllowedList []fmt.Stringer
	State       fmt.Stringer
}

// Error implements the error interface.
func (e ErrInvalidState) Error() string {
	return fmt.Sprintf("must be in state %v, while is in state %v", e.AllowedList, e.State)
}

// ErrNoRTSPRequestsInAWhile is returned when a session's idle timeout
// expires with no keepalive request received.
type ErrNoRTSPRequestsInAWhile struct{}

// Error implements the error interface.
func (e ErrNoRTSPRequestsInAWhile) Error() string {
	return "no RTSP requests received in a while"
}

// ErrNoUDPPacketsInAWhile is returned when a UDP session's inactivity
// timeout expires with no RTP/RTCP packets received.
type ErrNoUDPPacketsInAWhile struct{}

// Error implements the error interface.
func (e ErrNoUDPPacketsInAWhile) Error() string {
	return "no UDP packets received in a while"
}

// ErrSessionTornDown is returned to a connection whose session was torn
// down by a request arriving on a different connection.
type ErrSessionTornDown struct {
	Author net.Addr
}

// Error implements the error interface.
func (e ErrSessionTornDown) Error() string {
	return fmt.Sprintf("torn down by %v", e.Author)
}

// ErrSessionLinkedToOtherConn is returned when a session token is reused
// from a connection other than the one that created (or last switched
// transport for) it.
type ErrSessionLinkedToOtherConn struct{}

// Error implements the error interface.
func (e ErrSessionLinkedToOtherConn) Error() string {
	return "session is linked to another connection"
}

// ErrUDPPortsAlreadyInUse is returned when SETUP requests a pair of
// client ports that collide with an already-registered UDP session.
type ErrUDPPortsAlreadyInUse struct {
	Port int
}

// Error implements the error interface.
func (e ErrUDPPortsAlreadyInUse) Error() string {
	return fmt.Sprintf("UDP ports %d and %d are already in use by another session", e.Port, e.Port+1)
}

// StatusCode maps an error returned by the control plane to the RTSP
// status code that should be written back to the client. Errors outside
// the typed taxonomy map to 500.
func StatusCode(err error) base.StatusCode {
	switch err.(type) {
	case ErrMalformedRequest:
		return base.StatusBadRequest
	case ErrUnauthorized:
		return base.StatusUnauthorized
	case ErrForbidden:
		return base.StatusForbidden
	case ErrNotFound:
		return base.StatusNotFound
	case ErrMethodNotAllowed:
		return base.StatusMethodNotAllowed
	case ErrSessionNotFound:
		return base.StatusSessionNotFound
	case ErrPreconditionFailed:
		return base.StatusPreconditionFailed
	case ErrUnsupportedTransport:
		return base.StatusUnsupportedTransport
	case ErrVersionNotSupported:
		return base.StatusRTSPVersionNotSupported
	case ErrInvalidState:
		return base.StatusBadRequest
	default:
		return base.StatusInternalServerError
	}
}
