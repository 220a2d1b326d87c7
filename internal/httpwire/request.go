package httpwire

import (
	"sort"
	"strings"
)

// Request is a parsed request. It is immutable once returned by the
// parser; handlers receive it read-only.
type Request struct {
	Method    Method
	RawMethod string
	Path      string
	Version   string

	// headers holds normalized (lower-case) keys; last write wins for
	// duplicate keys.
	headers map[string]string

	Body []byte

	// SessionToken is the value of the "session" cookie, if present.
	SessionToken string
}

// Header returns the value for a header key, case-insensitively.
func (r *Request) Header(key string) string {
	return r.headers[strings.ToLower(key)]
}

// HasHeader reports whether a header is present, case-insensitively.
func (r *Request) HasHeader(key string) bool {
	_, ok := r.headers[strings.ToLower(key)]
	return ok
}

// HeaderKeys returns the normalized header keys in sorted order.
func (r *Request) HeaderKeys() []string {
	keys := make([]string, 0, len(r.headers))
	for k := range r.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AcceptsEncoding reports whether the client declared enc in its
// Accept-Encoding header.
func (r *Request) AcceptsEncoding(enc string) bool {
	accept := r.Header("Accept-Encoding")
	if accept == "" {
		return false
	}
	for _, part := range strings.Split(accept, ",") {
		// Tolerate quality values ("gzip;q=0.8").
		token := strings.TrimSpace(part)
		if i := strings.IndexByte(token, ';'); i >= 0 {
			token = strings.TrimSpace(token[:i])
		}
		if strings.EqualFold(token, enc) {
			return true
		}
	}
	return false
}

// sessionCookie extracts the value of the "session" cookie from a Cookie
// header value, or "" when absent.
func sessionCookie(cookieHeader string) string {
	for _, part := range strings.Split(cookieHeader, ";") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "session="); ok {
			return v
		}
	}
	return ""
}
