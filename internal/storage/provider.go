// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the interface for vault file operations. All paths are
// relative to the vault root; implementations must reject any path that
// resolves outside it.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of path, creating it and any
	// missing parent folders as needed.
	Write(path string, content []byte) error
	// Create writes a new file; it fails with os.ErrExist when path is
	// already present.
	Create(path string, content []byte) error
	// CreateFolder makes dir and any missing parents. An existing folder
	// is not an error.
	CreateFolder(dir string) error
	// Exists reports whether path names an existing file or folder.
	Exists(path string) (bool, error)
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
