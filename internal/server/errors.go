package server

import "fmt"

// ErrorKind is the closed set of error categories crossing module
// boundaries. Kinds are mapped to wire status codes in exactly one place,
// the supervisor's respond step; handlers stay transport-agnostic.
type ErrorKind int

const (
	KindSocket ErrorKind = iota
	KindRead
	KindWrite
	KindParse
	KindUnauthorized
	KindNotFound
	KindMethodNotAllowed
	KindTimeout
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindSocket:
		return "SocketError"
	case KindRead:
		return "ReadError"
	case KindWrite:
		return "WriteError"
	case KindParse:
		return "BadRequest"
	case KindUnauthorized:
		return "Unauthorized"
	case KindNotFound:
		return "NotFound"
	case KindMethodNotAllowed:
		return "MethodNotAllowed"
	case KindTimeout:
		return "Timeout"
	default:
		return "Internal"
	}
}

// status maps a kind to the client-visible status code. Only parse,
// auth, not-found and method errors surface as themselves; everything
// else collapses to a generic 500 at the boundary.
func (k ErrorKind) status() int {
	switch k {
	case KindParse:
		return 400
	case KindUnauthorized:
		return 401
	case KindNotFound:
		return 404
	case KindMethodNotAllowed:
		return 405
	default:
		return 500
	}
}

// clientMessage is the response body for an error kind. Details stay in
// the log sink; clients get the category only.
func (k ErrorKind) clientMessage() string {
	switch k {
	case KindParse:
		return "bad request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindMethodNotAllowed:
		return "method not allowed"
	default:
		return "internal server error"
	}
}

// Error carries a kind, a detail string for the log sink and an optional
// cause.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// E creates an Error with a kind and detail.
func E(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// WrapErr creates an Error with an underlying cause.
func WrapErr(kind ErrorKind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}
