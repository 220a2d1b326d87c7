package server

import (
	"context"
	"errors"
	"strings"

	"github.com/hayley-d/filehost/internal/filestore"
	"github.com/hayley-d/filehost/internal/httpwire"
)

const teapotBody = "short and stout\n"

// handleGet serves static resources. A handful of friendly paths alias
// onto files under the static root; everything else maps directly.
func (h *Handlers) handleGet(ctx context.Context, req *httpwire.Request) (*httpwire.Response, error) {
	if req.Path == routeCoffee || req.HasHeader("brew") {
		return &httpwire.Response{
			Status:      418,
			ContentType: "text/plain",
			Body:        []byte(teapotBody),
		}, nil
	}

	name := resourceName(req.Path)
	data, err := h.Files.Read(ctx, name)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			return nil, E(KindNotFound, "no resource at "+req.Path)
		}
		return nil, WrapErr(KindInternal, "reading "+name, err)
	}

	return &httpwire.Response{
		Status:      200,
		ContentType: contentTypeFor(name),
		Body:        data,
	}, nil
}

func resourceName(path string) string {
	switch path {
	case "/", "/hayley":
		return "index.html"
	case "/home":
		return "home.html"
	default:
		return strings.TrimPrefix(path, "/")
	}
}

func contentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(name, ".html"):
		return "text/html"
	case strings.HasSuffix(name, ".css"):
		return "text/css"
	case strings.HasSuffix(name, ".js"):
		return "text/javascript"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	case strings.HasSuffix(name, ".txt"):
		return "text/plain"
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".ico"):
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
