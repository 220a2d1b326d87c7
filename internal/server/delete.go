package server

import (
	"context"
	"errors"
	"strings"

	"github.com/hayley-d/filehost/internal/filestore"
	"github.com/hayley-d/filehost/internal/httpwire"
)

// handleDelete removes a stored resource. The session check happens
// before the path is even looked at: unauthenticated callers learn
// nothing about which resources exist.
func (h *Handlers) handleDelete(ctx context.Context, req *httpwire.Request) (*httpwire.Response, error) {
	sess, ok := h.Sessions.Lookup(req.SessionToken)
	if !ok {
		h.Audit.Action(AuditActionFileDelete, "", false)
		return nil, E(KindUnauthorized, "valid session required")
	}

	name := strings.TrimPrefix(req.Path, "/")
	if err := h.Files.Delete(ctx, name); err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			h.Audit.Action(AuditActionFileDelete, sess.Username, false)
			return nil, E(KindNotFound, "no resource at "+req.Path)
		}
		return nil, WrapErr(KindInternal, "deleting "+name, err)
	}

	h.Audit.Action(AuditActionFileDelete, sess.Username, true)
	return &httpwire.Response{
		Status:      200,
		ContentType: "application/json",
		Body:        []byte(`{"status":"deleted"}`),
	}, nil
}
