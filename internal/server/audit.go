package server

import (
	"time"

	"github.com/google/uuid"

	"github.com/hayley-d/filehost/internal/logsink"
)

// AuditPolicy controls the granularity of per-request audit events
// written to the log sink.
type AuditPolicy string

const (
	AuditNone   AuditPolicy = "none"   // error paths only (logged elsewhere)
	AuditErrors AuditPolicy = "errors" // requests that ended in an error status
	AuditAll    AuditPolicy = "all"    // every request
)

// AuditAction tags the kind of event being audited.
type AuditAction string

const (
	AuditActionRequest    AuditAction = "request"
	AuditActionSignup     AuditAction = "signup"
	AuditActionLogin      AuditAction = "login"
	AuditActionLogout     AuditAction = "logout"
	AuditActionFileDelete AuditAction = "file_delete"
)

// Auditor routes audit events to the log sink under the configured
// policy.
type Auditor struct {
	sink   *logsink.Sink
	policy AuditPolicy
}

// NewAuditor creates an auditor; an empty policy means AuditErrors.
func NewAuditor(sink *logsink.Sink, policy AuditPolicy) *Auditor {
	if policy == "" {
		policy = AuditErrors
	}
	return &Auditor{sink: sink, policy: policy}
}

// Request records the outcome of one request.
func (a *Auditor) Request(method, path string, status int, username string, d time.Duration) {
	if a == nil || a.policy == AuditNone {
		return
	}
	if a.policy == AuditErrors && status < 400 {
		return
	}
	fields := map[string]any{
		"id":          uuid.NewString(),
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": d.Milliseconds(),
	}
	if username != "" {
		fields["username"] = username
	}
	a.sink.Info(string(AuditActionRequest), "", fields)
}

// Action records a domain event (signup, login, delete) with its outcome.
func (a *Auditor) Action(action AuditAction, username string, success bool) {
	if a == nil || a.policy == AuditNone {
		return
	}
	if a.policy == AuditErrors && success {
		return
	}
	a.sink.Info(string(action), "", map[string]any{
		"id":       uuid.NewString(),
		"username": username,
		"success":  success,
	})
}
