package server

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"

	"github.com/hayley-d/filehost/internal/httpwire"
)

// Supported content encodings, in preference order.
const (
	encodingGzip    = "gzip"
	encodingDeflate = "deflate"
)

// negotiateEncoding picks the encoding to apply for a request, or ""
// when the client declared nothing this server supports.
func negotiateEncoding(req *httpwire.Request) string {
	if req.AcceptsEncoding(encodingGzip) {
		return encodingGzip
	}
	if req.AcceptsEncoding(encodingDeflate) {
		return encodingDeflate
	}
	return ""
}

// encodeBody compresses body with the given encoding.
func encodeBody(body []byte, encoding string) ([]byte, error) {
	var buf bytes.Buffer
	switch encoding {
	case encodingGzip:
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(body); err != nil {
			return nil, err
		}
		if err := gz.Close(); err != nil {
			return nil, err
		}
	case encodingDeflate:
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(body); err != nil {
			return nil, err
		}
		if err := fw.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
	return buf.Bytes(), nil
}

// applyCompression rewrites the response body per the client's declared
// accepted encodings. Empty bodies and unsupported declarations pass
// through unchanged; a codec failure sends the identity body rather than
// failing the response.
func applyCompression(resp *httpwire.Response, req *httpwire.Request) {
	if len(resp.Body) == 0 {
		return
	}
	encoding := negotiateEncoding(req)
	if encoding == "" {
		return
	}
	encoded, err := encodeBody(resp.Body, encoding)
	if err != nil {
		return
	}
	resp.Body = encoded
	resp.SetHeader("Content-Encoding", encoding)
}
