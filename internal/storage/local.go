package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps files under root/resources, split by resource id as
// id[0:3]/id[3:6]/id[6:] so no directory grows too large.
type LocalStore struct {
	root string
}

// NewLocalStore returns a store rooted at root, creating it if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage path is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage path: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(abs, "resources"), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

// Path returns the absolute path of the file stored for resourceID, or ""
// when the id cannot name a file.
func (s *LocalStore) Path(resourceID string) string {
	if validID(resourceID) != nil {
		return ""
	}
	id := strings.TrimSpace(resourceID)
	if len(id) < 7 {
		return filepath.Join(s.root, "resources", id)
	}
	return filepath.Join(s.root, "resources", id[0:3], id[3:6], id[6:])
}

// Put writes the file for resourceID, replacing any previous one.
func (s *LocalStore) Put(ctx context.Context, resourceID string, r io.Reader, size int64) error {
	if err := validID(resourceID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dst := s.Path(resourceID)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	src := r
	if size >= 0 {
		src = io.LimitReader(r, size)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}

// Exists reports whether a file is stored for resourceID.
func (s *LocalStore) Exists(_ context.Context, resourceID string) (bool, error) {
	p := s.Path(resourceID)
	if p == "" {
		return false, nil
	}
	_, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
