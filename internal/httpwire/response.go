package httpwire

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

const serverName = "filehost"

// Response is built by a handler and serialized exactly once by the
// connection supervisor. It is never mutated after that hand-off.
type Response struct {
	Status      int
	ContentType string
	Body        []byte

	// Cookie, when non-empty, is emitted as a Set-Cookie header with the
	// HttpOnly attribute. ClearCookie instead emits an expired cookie.
	Cookie      string
	ClearCookie bool

	headers map[string]string
}

// NewResponse creates a response with the given status code.
func NewResponse(status int) *Response {
	return &Response{Status: status, ContentType: "text/plain"}
}

// SetHeader sets an extra response header.
func (r *Response) SetHeader(key, value string) {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
}

// Header returns a previously set extra header.
func (r *Response) Header(key string) string {
	return r.headers[key]
}

// StatusText returns the reason phrase for the status codes this server
// emits. Unknown codes fall back to the 500 phrase.
func StatusText(status int) string {
	switch status {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 204:
		return "No Content"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 409:
		return "Conflict"
	case 418:
		return "I'm a teapot"
	default:
		return "Internal Server Error"
	}
}

// WriteTo serializes the response: status line, headers, blank line, body.
// Header order is deterministic (fixed headers first, extras sorted).
func (r *Response) WriteTo(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", r.Status, StatusText(r.Status))
	fmt.Fprintf(&b, "Server: %s\r\n", serverName)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123))

	contentType := r.ContentType
	if contentType == "" {
		contentType = "text/plain"
	}
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	fmt.Fprintf(&b, "Content-Length: %s\r\n", strconv.Itoa(len(r.Body)))
	b.WriteString("Connection: close\r\n")

	switch {
	case r.Cookie != "":
		fmt.Fprintf(&b, "Set-Cookie: session=%s; HttpOnly\r\n", r.Cookie)
	case r.ClearCookie:
		b.WriteString("Set-Cookie: session=; HttpOnly; Max-Age=0\r\n")
	}

	keys := make([]string, 0, len(r.headers))
	for k := range r.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, r.headers[k])
	}

	b.WriteString("\r\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}
