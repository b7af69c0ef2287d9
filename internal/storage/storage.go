package storage

import "io"

// Storage defines the interface for search thumbnail storage.
type Storage interface {
	// Store writes thumbnail data and returns the number of bytes written.
	Store(searchID string, data io.Reader) (int64, error)

	// Retrieve returns a ReadCloser for the stored thumbnail data.
	Retrieve(searchID string) (io.ReadCloser, error)

	// Delete removes the stored thumbnail data.
	Delete(searchID string) error

	// Exists checks whether thumbnail data exists in storage.
	Exists(searchID string) (bool, error)
}
