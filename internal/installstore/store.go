// Package installstore persists install records and package bytes for
// externally managed extensions.
//
// A record binds an extension ID to the package file holding its bytes and
// the version those bytes correspond to. On linux/darwin records are JSON
// preference files the browser reads directly; on windows they live in the
// registry. Both bindings keep the package bytes as <id>.crx files inside
// the extensions directory.
package installstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// NotInstalled is the version reported when no valid install record exists.
// Absence is state, not an error: it simply means "never installed".
const NotInstalled = "0"

// Record is the persisted install record for one extension.
type Record struct {
	CRX     string `json:"external_crx"`
	Version string `json:"external_version"`
}

// Store reads and writes install records and package bytes, keyed by
// extension ID. Implementations must keep the package bytes durably placed
// before publishing the record that references them, so a concurrent reader
// never observes a version pointing at missing or mismatched bytes.
type Store interface {
	// InstalledVersion returns the recorded version for id, or NotInstalled
	// when no readable record with a version exists. It never fails.
	InstalledVersion(id string) string

	// Install writes the package bytes for id and then publishes the
	// install record carrying version.
	Install(id, version string, data []byte) error

	// Remove deletes the package bytes and install record for id.
	Remove(id string) error

	// List returns the IDs of all installed extensions, sorted.
	List() ([]string, error)

	// Dir returns the extensions directory backing this store.
	Dir() string
}

// crxName returns the package file name for an extension ID.
func crxName(id string) string { return id + ".crx" }

// listCRX scans dir for package files and returns their extension IDs.
// Both bindings keep packages as flat <id>.crx files.
func listCRX(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.crx"))
	if err != nil {
		return nil, fmt.Errorf("scanning extensions directory %s: %w", dir, err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), ".crx"))
	}
	sort.Strings(ids)
	return ids, nil
}

// writeFileAtomic writes data to path via a temp file in the same directory
// and a rename, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("publishing %s: %w", filepath.Base(path), err)
	}
	return nil
}
