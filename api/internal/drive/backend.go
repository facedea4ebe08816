// Package drive files question images into a folder tree on Google Drive.
//
// Storage is the adapter the rest of the bot talks to. It sits on a narrow
// Backend so the folder logic can be exercised without the network; GDrive
// is the production Backend.
package drive

import (
	"context"
	"errors"
	"time"
)

// RootParent is the parent identifier of top-level folders.
const RootParent = "root"

var (
	// ErrBackend marks a failed storage-backend call. The underlying error is
	// logged where it happens and never shown to users.
	ErrBackend = errors.New("drive: backend operation failed")
	// ErrNotFound is returned by read-only lookups when a folder is missing.
	ErrNotFound = errors.New("drive: folder not found")
)

// File is a stored file as seen by the bot.
type File struct {
	ID          string
	Name        string
	MimeType    string
	CreatedTime time.Time
	ViewLink    string
}

// Backend is the set of cloud operations Storage needs.
type Backend interface {
	// FindFolder looks up a non-trashed folder by exact name under parentID.
	FindFolder(ctx context.Context, name, parentID string) (id string, found bool, err error)
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	// ListImages returns image files directly inside folderID.
	ListImages(ctx context.Context, folderID string) ([]File, error)
	Upload(ctx context.Context, name, folderID, mimeType string, content []byte) (File, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}
