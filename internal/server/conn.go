package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/hayley-d/filehost/internal/httpwire"
	"github.com/hayley-d/filehost/internal/logsink"
)

// ConnState is a supervisor's position in its lifecycle. Transitions
// run strictly forward; Failed and Closed are terminal.
type ConnState int

const (
	StateReading ConnState = iota
	StateParsed
	StateHandling
	StateResponding
	StateClosed
	StateFailed
)

func (s ConnState) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateParsed:
		return "parsed"
	case StateHandling:
		return "handling"
	case StateResponding:
		return "responding"
	case StateClosed:
		return "closed"
	default:
		return "failed"
	}
}

// supervisor owns exactly one accepted connection: read, parse, dispatch,
// respond, close. Connections are single-shot; every response carries
// Connection: close.
type supervisor struct {
	conn        net.Conn
	handlers    *Handlers
	sink        *logsink.Sink
	audit       *Auditor
	readTimeout time.Duration

	state ConnState
}

func (s *supervisor) transition(next ConnState) {
	s.sink.Debug("conn_state", "", map[string]any{
		"remote": s.conn.RemoteAddr().String(),
		"from":   s.state.String(),
		"to":     next.String(),
	})
	s.state = next
}

// serve runs the supervisor to completion. A request already in flight
// when shutdown triggers is read, handled and answered before the
// connection closes; the read deadline bounds how long that can take.
func (s *supervisor) serve(ctx context.Context) {
	defer s.conn.Close()
	start := time.Now()

	if s.readTimeout > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			s.fail(KindSocket, "setting read deadline", err)
			return
		}
	}

	req, err := httpwire.ReadRequest(bufio.NewReader(s.conn))
	if err != nil {
		s.readFailed(err)
		return
	}
	s.transition(StateParsed)

	// Resolve the identity the request arrived with before dispatch;
	// logout revokes its session mid-handling.
	username := ""
	if sess, ok := s.handlers.Sessions.Lookup(req.SessionToken); ok {
		username = sess.Username
	}

	s.transition(StateHandling)
	resp, err := s.handlers.Dispatch(ctx, req)
	if err != nil {
		resp = s.errorResponse(req, err)
	}

	s.transition(StateResponding)
	applyCompression(resp, req)
	if err := resp.WriteTo(s.conn); err != nil {
		s.fail(KindWrite, "writing response", err)
		return
	}

	s.audit.Request(req.RawMethod, req.Path, resp.Status, username, time.Since(start))
	s.transition(StateClosed)
}

// readFailed classifies a failed read. Timeouts and clients that hang up
// without sending anything get no response; malformed requests get a 400.
func (s *supervisor) readFailed(err error) {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		s.sink.Warn(KindTimeout.String(), "read deadline exceeded", map[string]any{
			"remote": s.conn.RemoteAddr().String(),
		})
		s.transition(StateClosed)
	case errors.Is(err, httpwire.ErrMalformed):
		resp := s.errorResponse(nil, WrapErr(KindParse, "parsing request", err))
		if werr := resp.WriteTo(s.conn); werr != nil {
			s.fail(KindWrite, "writing error response", werr)
			return
		}
		s.transition(StateClosed)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.transition(StateClosed)
	default:
		s.fail(KindRead, "reading request", err)
	}
}

// errorResponse maps a handler or parse error to a wire response. This
// is the only place error kinds become status codes.
func (s *supervisor) errorResponse(req *httpwire.Request, err error) *httpwire.Response {
	var serr *Error
	if !errors.As(err, &serr) {
		serr = WrapErr(KindInternal, "unclassified error", err)
	}

	fields := map[string]any{"remote": s.conn.RemoteAddr().String()}
	if req != nil {
		fields["method"] = req.RawMethod
		fields["path"] = req.Path
	}
	s.sink.Error(serr.Kind.String(), serr.Detail, fields, serr.Err)

	return &httpwire.Response{
		Status:      serr.Kind.status(),
		ContentType: "application/json",
		Body:        []byte(fmt.Sprintf("{%q:%q}", "error", serr.Kind.clientMessage())),
	}
}

func (s *supervisor) fail(kind ErrorKind, detail string, err error) {
	s.sink.Error(kind.String(), detail, map[string]any{
		"remote": s.conn.RemoteAddr().String(),
	}, err)
	s.transition(StateFailed)
}
