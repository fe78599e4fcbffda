package installstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps install records as per-extension JSON preference files
// next to the package bytes, the layout Chromium reads on linux and darwin:
//
//	<dir>/<id>.crx   package bytes
//	<dir>/<id>.json  {"external_crx":"<id>.crx","external_version":"<v>"}
type FileStore struct {
	dir string
}

// NewFileStore creates a store backed by the given extensions directory.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string { return s.dir }

// InstalledVersion reads the preference file for id. A missing file, broken
// JSON, or an absent version field all mean "not installed".
func (s *FileStore) InstalledVersion(id string) string {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		return NotInstalled
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return NotInstalled
	}
	if rec.Version == "" {
		return NotInstalled
	}
	return rec.Version
}

// Install places the package bytes and then publishes the preference file.
// The crx is written first: a record must never reference bytes that are
// not durably on disk yet.
func (s *FileStore) Install(id, version string, data []byte) error {
	if err := writeFileAtomic(s.crxPath(id), data, 0o644); err != nil {
		return fmt.Errorf("writing package for %s: %w", id, err)
	}

	rec := Record{CRX: crxName(id), Version: version}
	recData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record for %s: %w", id, err)
	}
	if err := writeFileAtomic(s.recordPath(id), recData, 0o644); err != nil {
		return fmt.Errorf("writing record for %s: %w", id, err)
	}
	return nil
}

// Remove deletes the package bytes and the preference file.
func (s *FileStore) Remove(id string) error {
	if err := os.Remove(s.crxPath(id)); err != nil {
		return fmt.Errorf("removing package for %s: %w", id, err)
	}
	if err := os.Remove(s.recordPath(id)); err != nil {
		return fmt.Errorf("removing record for %s: %w", id, err)
	}
	return nil
}

// List returns the IDs of all installed extensions.
func (s *FileStore) List() ([]string, error) {
	return listCRX(s.dir)
}

func (s *FileStore) crxPath(id string) string {
	return filepath.Join(s.dir, crxName(id))
}

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}
