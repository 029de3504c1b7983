package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"level-thumbnails/pkg/apperrors"
)

// Paths maps levels and submissions onto the two file namespaces:
// the canonical published thumbnail and the per-user pending area.
// Whether a level has a published thumbnail at all is derived from
// the canonical file existing, there is no separate flag anywhere.
type Paths struct {
	ThumbnailsDir string
	UploadsDir    string
}

func (p Paths) Canonical(levelID int64) string {
	return filepath.Join(p.ThumbnailsDir, fmt.Sprintf("%d.png", levelID))
}

func (p Paths) Pending(userID, levelID int64) string {
	return filepath.Join(p.UploadsDir, fmt.Sprintf("%d_%d.png", userID, levelID))
}

// DiskStore is the plain filesystem implementation of the file collaborator.
type DiskStore struct {
	Paths
}

func NewDiskStore(thumbnailsDir, uploadsDir string) (*DiskStore, error) {
	for _, dir := range []string{thumbnailsDir, uploadsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return &DiskStore{Paths{ThumbnailsDir: thumbnailsDir, UploadsDir: uploadsDir}}, nil
}

func (s *DiskStore) Write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &apperrors.StorageError{Op: "write", Err: err}
	}
	return nil
}

func (s *DiskStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperrors.StorageError{Op: "read", Err: err}
	}
	return data, nil
}

func (s *DiskStore) Rename(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return &apperrors.StorageError{Op: "rename", Err: err}
	}
	return nil
}

// Delete removes a file. A file that is already gone is not an error,
// a prior partial failure may have removed it first.
func (s *DiskStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &apperrors.StorageError{Op: "delete", Err: err}
	}
	return nil
}

func (s *DiskStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DirStats walks a directory and returns its total size and file count,
// used by the /stats endpoint.
func (s *DiskStore) DirStats(dir string) (int64, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, &apperrors.StorageError{Op: "readdir", Err: err}
	}

	var size int64
	count := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		count++
		size += info.Size()
	}
	return size, count, nil
}

// PublishedLevelIDs lists all level ids that currently have a canonical
// thumbnail, by scanning the thumbnails directory.
func (s *DiskStore) PublishedLevelIDs() ([]int64, error) {
	entries, err := os.ReadDir(s.ThumbnailsDir)
	if err != nil {
		return nil, &apperrors.StorageError{Op: "readdir", Err: err}
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		var id int64
		if _, err := fmt.Sscanf(entry.Name(), "%d.png", &id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
