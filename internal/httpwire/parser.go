package httpwire

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parsing limits. A request line or header block beyond these bounds is
// malformed, not truncated.
const (
	maxLineBytes   = 8 * 1024
	maxHeaderCount = 100
	maxBodyBytes   = 1 << 20
)

// ErrMalformed marks any parse failure. The connection layer maps it to a
// 400 response; a malformed request never yields a partial Request.
var ErrMalformed = errors.New("malformed request")

// ReadRequest reads one request from r. It returns the parsed Request, an
// error wrapping ErrMalformed for protocol violations, or the underlying
// I/O error when the stream fails before a full request arrives.
func ReadRequest(r *bufio.Reader) (*Request, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}

	req, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	if err := readHeaders(r, req); err != nil {
		return nil, err
	}

	if err := readBody(r, req); err != nil {
		return nil, err
	}

	req.SessionToken = sessionCookie(req.Header("Cookie"))
	return req, nil
}

// readLine reads up to the next newline in buffer-sized slices so the
// line limit bounds how much of an oversized line is ever consumed.
func readLine(r *bufio.Reader) (string, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		if len(line) > maxLineBytes {
			return "", fmt.Errorf("%w: line exceeds %d bytes", ErrMalformed, maxLineBytes)
		}
		if err == nil {
			return strings.TrimRight(string(line), "\r\n"), nil
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && len(line) != 0 {
			return "", fmt.Errorf("%w: truncated line", ErrMalformed)
		}
		return "", err
	}
}

// parseRequestLine splits "METHOD SP PATH SP VERSION". Unknown methods are
// recorded as MethodOther rather than rejected.
func parseRequestLine(line string) (*Request, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: bad request line %q", ErrMalformed, line)
	}
	method, path, version := parts[0], parts[1], parts[2]

	if method == "" || path == "" {
		return nil, fmt.Errorf("%w: empty method or path", ErrMalformed)
	}
	if !strings.HasPrefix(path, "/") || strings.Contains(path, "..") || strings.ContainsRune(path, 0) {
		return nil, fmt.Errorf("%w: bad path %q", ErrMalformed, path)
	}
	if !strings.HasPrefix(version, "HTTP/") {
		return nil, fmt.Errorf("%w: bad version %q", ErrMalformed, version)
	}

	return &Request{
		Method:    ParseMethod(method),
		RawMethod: method,
		Path:      path,
		Version:   version,
		headers:   make(map[string]string),
	}, nil
}

func readHeaders(r *bufio.Reader, req *Request) error {
	for {
		line, err := readLine(r)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
		if len(req.headers) >= maxHeaderCount {
			return fmt.Errorf("%w: too many headers", ErrMalformed)
		}

		key, value, found := strings.Cut(line, ":")
		if !found || key == "" || strings.ContainsAny(key, " \t") {
			return fmt.Errorf("%w: bad header line %q", ErrMalformed, line)
		}
		// Normalize to lower-case; duplicate keys are last-write-wins.
		req.headers[strings.ToLower(key)] = strings.TrimSpace(value)
	}
}

// readBody consumes Content-Length bytes. The bytes are retained only for
// methods that honor a body; for everything else they are drained so the
// connection stays framed, then discarded. A body that declares a JSON
// content type must be structurally valid JSON.
func readBody(r *bufio.Reader, req *Request) error {
	clHeader := req.Header("Content-Length")
	if clHeader == "" {
		return nil
	}

	length, err := strconv.Atoi(clHeader)
	if err != nil || length < 0 {
		return fmt.Errorf("%w: bad content-length %q", ErrMalformed, clHeader)
	}
	if length > maxBodyBytes {
		return fmt.Errorf("%w: body exceeds %d bytes", ErrMalformed, maxBodyBytes)
	}
	if length == 0 {
		return nil
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("%w: short body", ErrMalformed)
	}

	if !req.Method.expectsBody() {
		return nil
	}

	if strings.Contains(strings.ToLower(req.Header("Content-Type")), "application/json") && !json.Valid(body) {
		return fmt.Errorf("%w: body is not valid json", ErrMalformed)
	}

	req.Body = body
	return nil
}
