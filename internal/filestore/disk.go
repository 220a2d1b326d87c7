package filestore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Disk serves files from a directory on the local filesystem.
type Disk struct {
	root string
}

// NewDisk creates a disk store rooted at dir.
func NewDisk(dir string) *Disk {
	return &Disk{root: dir}
}

// resolve maps a store name to an on-disk path, rejecting anything that
// would escape the root.
func (d *Disk) resolve(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || strings.Contains(name, "..") || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	cleaned := path.Clean(name)
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return filepath.Join(d.root, filepath.FromSlash(cleaned)), nil
}

// Read returns the file contents, or ErrNotFound.
func (d *Disk) Read(_ context.Context, name string) ([]byte, error) {
	p, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read %q: %w", name, err)
	}
	return data, nil
}

// Write stores data under name, creating parent directories as needed.
func (d *Disk) Write(_ context.Context, name string, data []byte) error {
	p, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("write %q: %w", name, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", name, err)
	}
	return nil
}

// Delete removes the file, or returns ErrNotFound.
func (d *Disk) Delete(_ context.Context, name string) error {
	p, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return fmt.Errorf("delete %q: %w", name, err)
	}
	return nil
}
