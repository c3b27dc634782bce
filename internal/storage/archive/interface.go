// Package archive provides the export file sink backends.
package archive

import "context"

// Storage defines the interface for export storage backends
type Storage interface {
	// Write stores a file at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves a previously written file
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists checks if a file exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}
