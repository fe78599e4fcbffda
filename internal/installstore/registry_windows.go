//go:build windows

package installstore

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// extensionsKey is the registry path Chromium scans for external extensions.
const extensionsKey = `Software\Google\Chrome\Extensions`

// RegistryStore keeps install records as registry keys under HKCU, with the
// package bytes staged as <dir>/<id>.crx. Each extension gets a key
// Software\Google\Chrome\Extensions\<id> holding "path" and "version"
// string values.
type RegistryStore struct {
	dir string
}

// NewRegistryStore creates a store staging packages in dir.
func NewRegistryStore(dir string) *RegistryStore {
	return &RegistryStore{dir: dir}
}

func (s *RegistryStore) Dir() string { return s.dir }

// InstalledVersion reads the version value from the extension's registry
// key. A missing key or value means "not installed".
func (s *RegistryStore) InstalledVersion(id string) string {
	key, err := registry.OpenKey(registry.CURRENT_USER, extensionsKey+`\`+id, registry.QUERY_VALUE)
	if err != nil {
		return NotInstalled
	}
	defer key.Close()

	version, _, err := key.GetStringValue("version")
	if err != nil || version == "" {
		return NotInstalled
	}
	return version
}

// Install places the package bytes and then publishes the registry record.
func (s *RegistryStore) Install(id, version string, data []byte) error {
	crxPath := s.crxPath(id)
	if err := writeFileAtomic(crxPath, data, 0o644); err != nil {
		return fmt.Errorf("writing package for %s: %w", id, err)
	}

	key, _, err := registry.CreateKey(registry.CURRENT_USER, extensionsKey+`\`+id, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("creating registry key for %s: %w", id, err)
	}
	defer key.Close()

	if err := key.SetStringValue("path", crxPath); err != nil {
		return fmt.Errorf("writing registry path for %s: %w", id, err)
	}
	if err := key.SetStringValue("version", version); err != nil {
		return fmt.Errorf("writing registry version for %s: %w", id, err)
	}
	return nil
}

// Remove deletes the package bytes and the registry key.
func (s *RegistryStore) Remove(id string) error {
	if err := os.Remove(s.crxPath(id)); err != nil {
		return fmt.Errorf("removing package for %s: %w", id, err)
	}
	if err := registry.DeleteKey(registry.CURRENT_USER, extensionsKey+`\`+id); err != nil {
		return fmt.Errorf("removing registry key for %s: %w", id, err)
	}
	return nil
}

// List returns the IDs of all staged packages.
func (s *RegistryStore) List() ([]string, error) {
	return listCRX(s.dir)
}

func (s *RegistryStore) crxPath(id string) string {
	return filepath.Join(s.dir, crxName(id))
}
