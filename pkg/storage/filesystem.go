package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore persists attachments on disk under a base directory and serves
// them from a public base URL.
type LocalStore struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalStore ensures the base directory exists and returns a handle.
func NewLocalStore(baseDir, publicBaseURL string) (*LocalStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if publicBaseURL == "" {
		publicBaseURL = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Save streams the reader into a uniquely named file. The stored name keeps
// the original extension so downloads retain their type.
func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(filename))
	target := filepath.Join(s.baseDir, stored)

	file, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	size, err := io.Copy(file, r)
	if err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("write upload stream: %w", err)
	}

	return &UploadResult{
		URL:        path.Join(s.publicBaseURL, stored),
		ExternalID: stored,
		Size:       size,
	}, nil
}

// Delete removes a stored attachment if present.
func (s *LocalStore) Delete(ctx context.Context, externalID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(s.baseDir, filepath.Base(externalID))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Open returns a read-only handle for a stored attachment.
func (s *LocalStore) Open(externalID string) (*os.File, error) {
	file, err := os.Open(filepath.Join(s.baseDir, filepath.Base(externalID)))
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return file, nil
}

// CleanupOlderThan removes attachments older than the provided TTL and
// returns deleted names. Used by operational tooling, not request paths.
func (s *LocalStore) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			rel = p
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup uploads: %w", err)
	}
	return deleted, nil
}
