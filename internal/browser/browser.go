// Package browser resolves per-platform filesystem locations for
// Chromium-based browsers. A "branding" names the browser flavor
// (chromium, ungoogled-chromium, ...) and decides where its user data
// directory, and therefore its "External Extensions" directory, lives.
//
// Known brandings ship embedded in browsers.yaml; any other branding
// string is accepted and used as the directory name verbatim.
package browser

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AppName is the directory name used for crxup's own configuration.
const AppName = "crxup"

// ExtensionsSubdir is the directory browsers scan for external extension
// install records.
const ExtensionsSubdir = "External Extensions"

//go:embed browsers.yaml
var rawProfiles []byte

var (
	once     sync.Once
	profiles struct {
		Default   string   `yaml:"default"`
		Brandings []string `yaml:"brandings"`
	}
)

func load() {
	once.Do(func() {
		profiles.Default = "chromium"
		_ = yaml.Unmarshal(rawProfiles, &profiles)
	})
}

// Default returns the branding assumed when a config file sets none.
func Default() string { load(); return profiles.Default }

// Known reports whether the branding is one of the embedded, verified flavors.
func Known(branding string) bool {
	load()
	for _, b := range profiles.Brandings {
		if b == branding {
			return true
		}
	}
	return false
}

// ConfigDir returns the directory crxup reads its config files from.
// CRXUP_CONFIG_DIR overrides the platform default.
func ConfigDir() (string, error) {
	if v := os.Getenv("CRXUP_CONFIG_DIR"); v != "" {
		return v, nil
	}
	switch runtime.GOOS {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, ".config", AppName), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", AppName), nil
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), AppName), nil
	default:
		return "", fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}

// ExtensionsDir returns the browser's "External Extensions" directory for
// the given branding.
//
// On darwin the user data directory is title-cased ("chromium" lives under
// "Chromium"). Windows builds of Chromium do not load extensions from the
// user data directory at all, so packages are staged under %AppData%\crxup
// and advertised through the registry instead.
func ExtensionsDir(branding string) (string, error) {
	switch runtime.GOOS {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, ".config", branding, ExtensionsSubdir), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		name := cases.Title(language.English).String(branding)
		return filepath.Join(home, "Library", "Application Support", name, ExtensionsSubdir), nil
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), AppName, ExtensionsSubdir), nil
	default:
		return "", fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}
