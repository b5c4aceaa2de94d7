// internal/upload/upload.go
//
// Profile-picture storage.
//
// Context
// -------
// Uploaded pictures land in one fixed directory with a generated,
// timestamp-based filename; the Users row stores the path relative to the
// application root (e.g. "src/profilepicture/profilepicture1716899...png"),
// which is the shape the legacy frontend expects.  Replacing a picture
// unlinks the previous file unless it is the shared default image.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Storage writes and removes picture files.  Safe for concurrent use; the
// millisecond timestamp in the filename keeps concurrent uploads distinct
// enough for this service's traffic.
type Storage struct {
	Root    string // application root; files live under Root/Dir
	Dir     string // relative picture directory, e.g. "src/profilepicture"
	Default string // relative path of the default picture, never deleted
}

// Save streams src to a new timestamped file and returns the relative path
// to store in the Users row.
func (s *Storage) Save(src io.Reader) (string, error) {
	name := fmt.Sprintf("profilepicture%d.png", time.Now().UnixMilli())
	rel := filepath.ToSlash(filepath.Join(s.Dir, name))

	abs := filepath.Join(s.Root, s.Dir, name)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(abs)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(abs)
		return "", err
	}
	return rel, nil
}

// Remove unlinks a previously stored picture.  The default picture and
// empty paths are left alone; a missing file is not an error.
func (s *Storage) Remove(rel string) error {
	if rel == "" || rel == s.Default {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
