package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Compile-time check that FileSystem implements Storage.
var _ Storage = (*FileSystem)(nil)

// FileSystem implements Storage using the local filesystem.
// Thumbnails are stored at <basePath>/<searchID>/thumb.
type FileSystem struct {
	basePath string
}

// NewFileSystem creates a new FileSystem storage rooted at basePath.
func NewFileSystem(basePath string) *FileSystem {
	return &FileSystem{basePath: basePath}
}

// searchPath returns the directory path for a given search.
func (fs *FileSystem) searchPath(searchID string) string {
	return filepath.Join(fs.basePath, searchID)
}

// thumbPath returns the full path to the thumbnail file for a given search.
func (fs *FileSystem) thumbPath(searchID string) string {
	return filepath.Join(fs.searchPath(searchID), "thumb")
}

// Store writes data from the reader to disk using atomic write (temp file + rename).
// It returns the number of bytes written.
func (fs *FileSystem) Store(searchID string, data io.Reader) (int64, error) {
	dir := fs.searchPath(searchID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Write to a temp file in the same directory for atomic rename.
	tmp, err := os.CreateTemp(dir, "thumb-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, data)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("writing data: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}

	dst := fs.thumbPath(searchID)
	if err := os.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("renaming temp file to %s: %w", dst, err)
	}

	// Rename succeeded; prevent deferred cleanup from removing the final file.
	tmpPath = ""

	return n, nil
}

// Retrieve opens the stored thumbnail file and returns an io.ReadCloser.
func (fs *FileSystem) Retrieve(searchID string) (io.ReadCloser, error) {
	path := fs.thumbPath(searchID)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("thumbnail not found: %s", searchID)
		}
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	return f, nil
}

// Delete removes the entire <searchID>/ directory.
// It is idempotent: deleting a non-existent thumbnail returns no error.
func (fs *FileSystem) Delete(searchID string) error {
	dir := fs.searchPath(searchID)
	err := os.RemoveAll(dir)
	if err != nil {
		return fmt.Errorf("removing directory %s: %w", dir, err)
	}
	return nil
}

// Exists checks whether the thumbnail file exists on disk.
func (fs *FileSystem) Exists(searchID string) (bool, error) {
	path := fs.thumbPath(searchID)
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("checking file %s: %w", path, err)
}
