package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored attachment.
type UploadResult struct {
	URL        string
	ExternalID string
	Size       int64
}

// Store is the attachment storage collaborator. Create/update flows call Save
// before any row is persisted; a Save error aborts the whole operation so no
// record ever references a dangling file.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, externalID string) error
}
