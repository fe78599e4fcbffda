package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "chromium.yaml", `
main:
  branding: ungoogled-chromium
  threads: 8
  remove_orphans: true
  extensions_dir: `+filepath.Join(dir, "ext")+`
extensions:
  - cjpalhdlnbpafiamejdnhcphjbkeiagm
  - gcbommkclmclpchllfjekcdonpmejbdp
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Branding != "ungoogled-chromium" {
		t.Errorf("Branding = %q", cfg.Branding)
	}
	if cfg.Threads != 8 {
		t.Errorf("Threads = %d, want 8", cfg.Threads)
	}
	if !cfg.RemoveOrphans {
		t.Error("RemoveOrphans = false, want true")
	}
	want := []string{"cjpalhdlnbpafiamejdnhcphjbkeiagm", "gcbommkclmclpchllfjekcdonpmejbdp"}
	if !reflect.DeepEqual(cfg.Extensions, want) {
		t.Errorf("Extensions = %v, want %v", cfg.Extensions, want)
	}
	if cfg.ExtensionsDir != filepath.Join(dir, "ext") {
		t.Errorf("ExtensionsDir = %q", cfg.ExtensionsDir)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "minimal.yaml", `
main:
  extensions_dir: `+filepath.Join(dir, "ext")+`
extensions:
  - aaa
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Branding != "chromium" {
		t.Errorf("default Branding = %q, want chromium", cfg.Branding)
	}
	if cfg.Threads != DefaultThreads {
		t.Errorf("default Threads = %d, want %d", cfg.Threads, DefaultThreads)
	}
	if cfg.RemoveOrphans {
		t.Error("default RemoveOrphans = true, want false")
	}
}

func TestLoad_MissingSections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing string
	}{
		{"no extensions", "main:\n  threads: 2\n", "extensions"},
		{"no main", "extensions:\n  - aaa\n", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, "broken.yaml", tt.content)

			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error for missing section, got nil")
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("error %q does not name the missing section %q", err, tt.missing)
			}
		})
	}
}

func TestLoad_DedupesExtensions(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "dupes.yaml", `
main:
  extensions_dir: `+filepath.Join(dir, "ext")+`
extensions:
  - aaa
  - bbb
  - aaa
  - ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if want := []string{"aaa", "bbb"}; !reflect.DeepEqual(cfg.Extensions, want) {
		t.Errorf("Extensions = %v, want %v", cfg.Extensions, want)
	}
}

func TestLoad_InvalidThreads(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "threads.yaml", `
main:
  threads: 0
  extensions_dir: `+filepath.Join(dir, "ext")+`
extensions:
  - aaa
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Threads != DefaultThreads {
		t.Errorf("Threads = %d, want fallback %d", cfg.Threads, DefaultThreads)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CRXUP_CONFIG_DIR", dir)

	writeConfig(t, dir, "b.yaml", "main:\nextensions:\n")
	writeConfig(t, dir, "a.yml", "main:\nextensions:\n")
	writeConfig(t, dir, "ignored.ini", "")

	files, err := Discover()
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	want := []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Discover() = %v, want %v", files, want)
	}
}

func TestPreflight(t *testing.T) {
	t.Run("creates extensions dir", func(t *testing.T) {
		dir := t.TempDir()
		cfg := &Config{ExtensionsDir: filepath.Join(dir, "External Extensions")}

		if err := Preflight(cfg); err != nil {
			t.Fatalf("Preflight failed: %v", err)
		}
		info, err := os.Stat(cfg.ExtensionsDir)
		if err != nil {
			t.Fatalf("extensions dir not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("extensions dir is not a directory")
		}
	})

	t.Run("missing user data dir is fatal", func(t *testing.T) {
		cfg := &Config{ExtensionsDir: filepath.Join(t.TempDir(), "no-browser", "External Extensions")}
		if err := Preflight(cfg); err == nil {
			t.Fatal("expected error for missing user data directory, got nil")
		}
	})
}
