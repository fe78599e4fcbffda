package installstore

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestInstalledVersion(t *testing.T) {
	tests := []struct {
		name    string
		record  string // empty means no record file at all
		version string
	}{
		{"no record", "", NotInstalled},
		{"valid record", `{"external_crx":"abc.crx","external_version":"1.2.3.4"}`, "1.2.3.4"},
		{"broken JSON", `{not json`, NotInstalled},
		{"missing version field", `{"external_crx":"abc.crx"}`, NotInstalled},
		{"empty version", `{"external_crx":"abc.crx","external_version":""}`, NotInstalled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.record != "" {
				if err := os.WriteFile(filepath.Join(dir, "abc.json"), []byte(tt.record), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			s := NewFileStore(dir)
			if got := s.InstalledVersion("abc"); got != tt.version {
				t.Errorf("InstalledVersion() = %q, want %q", got, tt.version)
			}
		})
	}
}

func TestInstall(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	data := []byte("package bytes v1")
	if err := s.Install("abc", "1.0", data); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "abc.crx"))
	if err != nil {
		t.Fatalf("package file missing: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("package bytes = %q, want %q", got, data)
	}

	recData, err := os.ReadFile(filepath.Join(dir, "abc.json"))
	if err != nil {
		t.Fatalf("record file missing: %v", err)
	}
	var rec Record
	if err := json.Unmarshal(recData, &rec); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if rec.CRX != "abc.crx" || rec.Version != "1.0" {
		t.Errorf("record = %+v, want {abc.crx 1.0}", rec)
	}

	// Overwrite with a new version.
	if err := s.Install("abc", "1.1", []byte("package bytes v2")); err != nil {
		t.Fatalf("reinstall failed: %v", err)
	}
	if got := s.InstalledVersion("abc"); got != "1.1" {
		t.Errorf("InstalledVersion() after reinstall = %q, want %q", got, "1.1")
	}
	got, _ = os.ReadFile(filepath.Join(dir, "abc.crx"))
	if !bytes.Equal(got, []byte("package bytes v2")) {
		t.Errorf("package bytes not replaced, got %q", got)
	}

	// No temp files may survive an install.
	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	if err := s.Install("abc", "1.0", []byte("bytes")); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("abc"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	for _, name := range []string{"abc.crx", "abc.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s still exists after Remove", name)
		}
	}

	if err := s.Remove("abc"); err == nil {
		t.Error("Remove of a missing extension should fail")
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	for _, id := range []string{"ccc", "aaa", "bbb"} {
		if err := s.Install(id, "1.0", []byte(id)); err != nil {
			t.Fatal(err)
		}
	}
	// A stray non-crx file must not show up.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	ids, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if want := []string{"aaa", "bbb", "ccc"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("List() = %v, want %v", ids, want)
	}
}
