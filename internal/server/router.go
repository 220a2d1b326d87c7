package server

import (
	"context"

	"github.com/hayley-d/filehost/internal/credstore"
	"github.com/hayley-d/filehost/internal/filestore"
	"github.com/hayley-d/filehost/internal/httpwire"
	"github.com/hayley-d/filehost/internal/session"
)

// Routes with dedicated handlers, beyond static resource paths.
const (
	routeSignup = "/signup"
	routeLogin  = "/login"
	routeLogout = "/logout"
	routeCoffee = "/coffee"
)

// Handlers is the handler set: pure functions from (request, session
// context) to a response. Handlers never touch the network; the
// supervisor serializes whatever they return. Shared stores are
// constructed once and threaded through here at spawn time.
type Handlers struct {
	Files    filestore.Store
	Creds    credstore.Store
	Sessions *session.Store
	Audit    *Auditor
}

// Dispatch routes a parsed request to its handler. A returned *Error is
// mapped to a status code by the caller at the respond boundary.
func (h *Handlers) Dispatch(ctx context.Context, req *httpwire.Request) (*httpwire.Response, error) {
	switch req.Method {
	case httpwire.MethodGet:
		return h.handleGet(ctx, req)
	case httpwire.MethodPost:
		switch req.Path {
		case routeSignup:
			return h.handleSignup(ctx, req)
		case routeLogin:
			return h.handleLogin(ctx, req)
		case routeLogout:
			return h.handleLogout(ctx, req)
		default:
			return nil, E(KindNotFound, "no POST route for "+req.Path)
		}
	case httpwire.MethodPut, httpwire.MethodPatch:
		// Deliberately rejected, body never parsed.
		return nil, E(KindMethodNotAllowed, req.RawMethod+" is not supported")
	case httpwire.MethodDelete:
		return h.handleDelete(ctx, req)
	default:
		if recognizedPath(req.Path) {
			return nil, E(KindMethodNotAllowed, "method "+req.RawMethod+" not allowed for "+req.Path)
		}
		return nil, E(KindNotFound, "no route for "+req.Path)
	}
}

// recognizedPath reports whether the path belongs to the fixed route
// set. Used only to choose between 404 and 405 for unsupported methods.
func recognizedPath(path string) bool {
	switch path {
	case "/", "/home", routeCoffee, routeSignup, routeLogin, routeLogout:
		return true
	default:
		return false
	}
}
