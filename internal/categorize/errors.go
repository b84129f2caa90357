package categorize

import (
	"errors"
	"fmt"
)

// Each failure kind is a distinct type so the caller can render a targeted
// message ("check your connection" vs "server error, try again"). The client
// never retries; retry initiation belongs to the caller.

// TransportError covers no-network, connection and timeout failures where no
// usable HTTP response arrived.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("categorizer unreachable: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// AuthError means the remote rejected our credentials.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("categorizer rejected credentials (HTTP %d)", e.StatusCode)
}

// ServerError is any other non-2xx response, body kept for diagnostics.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("categorizer HTTP %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError means a 200 whose body, even after unwrapping, does
// not parse as the expected item list. Raw carries the unmodified body.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("categorizer response not parseable: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ErrEmptyResult means the response parsed but carried zero items. Surfacing
// this beats returning a silently empty transaction list.
var ErrEmptyResult = errors.New("categorizer returned no line items")

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

func IsEmptyResult(err error) bool { return errors.Is(err, ErrEmptyResult) }
