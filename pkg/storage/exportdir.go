// Package storage persists console-produced files (listing snapshots,
// pre-delete backups, registration posters) under a local exports directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExportDir is a handle on the local directory receiving console output.
type ExportDir struct {
	baseDir string
}

// NewExportDir ensures the directory exists and returns a handle.
func NewExportDir(baseDir string) (*ExportDir, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create exports directory: %w", err)
	}
	return &ExportDir{baseDir: baseDir}, nil
}

// Save writes the given bytes under the directory and returns the full path.
func (d *ExportDir) Save(filename string, data []byte) (string, error) {
	path := d.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// Open returns a read-only handle for a stored file.
func (d *ExportDir) Open(filename string) (*os.File, error) {
	file, err := os.Open(d.resolve(filename))
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (d *ExportDir) Delete(filename string) error {
	if err := os.Remove(d.resolve(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete export file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes files older than the TTL and returns their names.
func (d *ExportDir) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(d.baseDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(d.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup exports: %w", err)
	}
	return deleted, nil
}

// Path resolves a filename inside the directory.
func (d *ExportDir) Path(filename string) string {
	return d.resolve(filename)
}

func (d *ExportDir) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(d.baseDir, filename)
}

// Filename builds a collision-safe timestamped name such as
// students_delete_backup_20240131_093012_1b9f3c7a.csv.
func Filename(prefix, ext string) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	short := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return fmt.Sprintf("%s_%s_%s.%s", prefix, timestamp, short, ext)
}
