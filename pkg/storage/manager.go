package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vkbackup/pkg/config"
	"vkbackup/pkg/logger"
)

// Manager stages downloaded photos on the local filesystem before upload.
// It is not safe for concurrent use.
type Manager struct {
	dir       string
	temporary bool
	prefix    string
	includeID bool
	// issued maps a file name to the photo it was handed out for
	issued map[string]int64
	logger logger.Logger
}

// NewManager creates a staging manager. With KeepLocal the photos are kept in
// LocalDir; otherwise they go to a fresh temporary directory that Cleanup
// removes.
func NewManager(storageCfg config.StorageConfig, naming config.NamingConfig, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	m := &Manager{
		prefix:    naming.Prefix,
		includeID: naming.IncludePhotoID,
		issued:    make(map[string]int64),
		logger:    log.WithField("component", "storage"),
	}
	if m.prefix == "" {
		m.prefix = "photo"
	}

	if storageCfg.KeepLocal {
		dir := storageCfg.LocalDir
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		m.dir = dir
	} else {
		dir, err := os.MkdirTemp("", "vkbackup-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
		m.dir = dir
		m.temporary = true
	}

	m.logger.DebugWithFields("Staging directory ready", map[string]interface{}{
		"dir":       m.dir,
		"temporary": m.temporary,
	})
	return m, nil
}

// Dir returns the staging directory
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns the local path of a staged file
func (m *Manager) Path(fileName string) string {
	return filepath.Join(m.dir, fileName)
}

// FileName derives the name a photo is stored under:
// <prefix>_<likes>_<date>.jpg, or <prefix>_<likes>_<date>_<id>.jpg when
// photo ids are included. collision is true when a different photo already
// received the same name during this run; the later file replaces the
// earlier one.
func (m *Manager) FileName(likes int, date, photoID int64) (name string, collision bool) {
	parts := []string{m.prefix, strconv.Itoa(likes), strconv.FormatInt(date, 10)}
	if m.includeID {
		parts = append(parts, strconv.FormatInt(photoID, 10))
	}
	name = strings.Join(parts, "_") + ".jpg"

	if prev, ok := m.issued[name]; ok && prev != photoID {
		collision = true
		m.logger.WarnWithFields("File name collision, earlier photo will be overwritten", map[string]interface{}{
			"file_name":      name,
			"photo_id":       photoID,
			"previous_photo": prev,
		})
	}
	m.issued[name] = photoID
	return name, collision
}

// Write creates fileName atomically: fill writes into a temporary file that
// is renamed into place only when fill succeeds.
func (m *Manager) Write(fileName string, fill func(w io.Writer) (int64, error)) (string, int64, error) {
	target := m.Path(fileName)
	tempFile := target + ".tmp"

	out, err := os.Create(tempFile)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	n, err := fill(out)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", n, fmt.Errorf("failed to save photo data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", n, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return "", n, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return target, n, nil
}

// Cleanup removes the staging directory if it is temporary. Kept local
// directories are left alone.
func (m *Manager) Cleanup() error {
	if !m.temporary {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to remove staging directory: %w", err)
	}
	m.logger.DebugWithFields("Staging directory removed", map[string]interface{}{"dir": m.dir})
	return nil
}
