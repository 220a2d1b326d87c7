package httpwire

// Method identifies the HTTP method of a parsed request. Unknown methods
// parse successfully as MethodOther so the handler layer can answer 405
// instead of the parser rejecting the request as malformed.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
	MethodOther
)

// ParseMethod maps a request-line token to a Method. The comparison is
// exact: method tokens are case-sensitive on the wire.
func ParseMethod(token string) Method {
	switch token {
	case "GET":
		return MethodGet
	case "POST":
		return MethodPost
	case "PUT":
		return MethodPut
	case "PATCH":
		return MethodPatch
	case "DELETE":
		return MethodDelete
	default:
		return MethodOther
	}
}

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodPatch:
		return "PATCH"
	case MethodDelete:
		return "DELETE"
	default:
		return "OTHER"
	}
}

// expectsBody reports whether a request body is honored for the method.
// GET and DELETE bodies are consumed off the wire but discarded; PUT and
// PATCH are rejected by the handler layer before any body is parsed.
func (m Method) expectsBody() bool {
	return m == MethodPost
}
