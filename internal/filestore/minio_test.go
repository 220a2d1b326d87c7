package filestore

import "testing"

func TestNormaliseEndpoint(t *testing.T) {
	cases := []struct {
		in     string
		host   string
		secure bool
		ok     bool
	}{
		{"minio:9000", "minio:9000", false, true},
		{"http://minio:9000", "minio:9000", false, true},
		{"https://files.example.com", "files.example.com", true, true},
		{"  minio:9000  ", "minio:9000", false, true},
		{"", "", false, false},
		{"http://", "", false, false},
		{"http://minio:9000/some/path", "", false, false},
	}
	for _, c := range cases {
		host, secure, err := normaliseEndpoint(c.in)
		if c.ok && err != nil {
			t.Fatalf("normaliseEndpoint(%q): unexpected error %v", c.in, err)
		}
		if !c.ok {
			if err == nil {
				t.Fatalf("normaliseEndpoint(%q): expected error", c.in)
			}
			continue
		}
		if host != c.host || secure != c.secure {
			t.Fatalf("normaliseEndpoint(%q) = (%q, %v)", c.in, host, secure)
		}
	}
}

func TestResolveEndpointUseSSL(t *testing.T) {
	cases := []struct {
		endpoint string
		useSSL   bool
		secure   bool
	}{
		{"minio:9000", false, false},
		{"minio:9000", true, true},
		{"http://minio:9000", true, true}, // override wins over the plain scheme
		{"https://files.example.com", false, true},
	}
	for _, c := range cases {
		_, secure, err := resolveEndpoint(MinioConfig{Endpoint: c.endpoint, UseSSL: c.useSSL})
		if err != nil {
			t.Fatalf("resolveEndpoint(%q): %v", c.endpoint, err)
		}
		if secure != c.secure {
			t.Fatalf("resolveEndpoint(%q, useSSL=%v) secure = %v, want %v", c.endpoint, c.useSSL, secure, c.secure)
		}
	}
}

func TestObjectKeyStripsLeadingSlash(t *testing.T) {
	if got := objectKey("/uploads/a.txt"); got != "uploads/a.txt" {
		t.Fatalf("objectKey = %q", got)
	}
	if got := objectKey("uploads/a.txt"); got != "uploads/a.txt" {
		t.Fatalf("objectKey = %q", got)
	}
}
