package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/hayley-d/filehost/internal/credstore"
	"github.com/hayley-d/filehost/internal/httpwire"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// decodeCredentials pulls a username/password pair out of a request
// body. Blank fields after trimming count as malformed input.
func decodeCredentials(req *httpwire.Request) (credentialsRequest, error) {
	var creds credentialsRequest
	if len(req.Body) == 0 {
		return creds, E(KindParse, "missing request body")
	}
	if err := json.Unmarshal(req.Body, &creds); err != nil {
		return creds, WrapErr(KindParse, "decoding credentials", err)
	}
	creds.Username = strings.TrimSpace(creds.Username)
	creds.Password = strings.TrimSpace(creds.Password)
	if creds.Username == "" || creds.Password == "" {
		return creds, E(KindParse, "username and password are required")
	}
	return creds, nil
}

func (h *Handlers) handleSignup(ctx context.Context, req *httpwire.Request) (*httpwire.Response, error) {
	creds, err := decodeCredentials(req)
	if err != nil {
		return nil, err
	}

	hash, err := credstore.HashPassword(creds.Password)
	if err != nil {
		return nil, WrapErr(KindInternal, "hashing password", err)
	}

	if err := h.Creds.Insert(ctx, creds.Username, hash); err != nil {
		if errors.Is(err, credstore.ErrExists) {
			// Conflict is a normal outcome of the atomic insert, not
			// an error class of its own.
			h.Audit.Action(AuditActionSignup, creds.Username, false)
			return &httpwire.Response{
				Status:      409,
				ContentType: "application/json",
				Body:        []byte(`{"error":"username already taken"}`),
			}, nil
		}
		return nil, WrapErr(KindInternal, "storing credentials", err)
	}

	h.Audit.Action(AuditActionSignup, creds.Username, true)
	return &httpwire.Response{
		Status:      201,
		ContentType: "application/json",
		Body:        []byte(`{"status":"created"}`),
	}, nil
}

func (h *Handlers) handleLogin(ctx context.Context, req *httpwire.Request) (*httpwire.Response, error) {
	creds, err := decodeCredentials(req)
	if err != nil {
		return nil, err
	}

	// Unknown username and wrong password produce the same failure so
	// the response does not reveal which accounts exist.
	hash, err := h.Creds.Lookup(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			h.Audit.Action(AuditActionLogin, creds.Username, false)
			return nil, E(KindUnauthorized, "invalid credentials")
		}
		return nil, WrapErr(KindInternal, "looking up credentials", err)
	}
	if !credstore.VerifyPassword(hash, creds.Password) {
		h.Audit.Action(AuditActionLogin, creds.Username, false)
		return nil, E(KindUnauthorized, "invalid credentials")
	}

	sess, err := h.Sessions.Create(creds.Username)
	if err != nil {
		return nil, WrapErr(KindInternal, "creating session", err)
	}
	h.Audit.Action(AuditActionLogin, creds.Username, true)
	return &httpwire.Response{
		Status:      200,
		ContentType: "application/json",
		Body:        []byte(`{"status":"ok"}`),
		Cookie:      sess.Token,
	}, nil
}

// handleLogout revokes whatever session the request carries. Logging
// out without a valid session is still a success: the end state is the
// same either way.
func (h *Handlers) handleLogout(ctx context.Context, req *httpwire.Request) (*httpwire.Response, error) {
	username := ""
	if sess, ok := h.Sessions.Lookup(req.SessionToken); ok {
		username = sess.Username
	}
	h.Sessions.Revoke(req.SessionToken)
	h.Audit.Action(AuditActionLogout, username, true)
	return &httpwire.Response{
		Status:      200,
		ContentType: "application/json",
		Body:        []byte(`{"status":"ok"}`),
		ClearCookie: true,
	}, nil
}
