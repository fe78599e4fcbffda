// Package config loads crxup run configuration.
//
// Each YAML file in the config directory describes one browser to keep in
// sync: the branding, the worker count, the orphan policy, and the set of
// extension IDs. A run processes every file independently. The loaded
// Config is an immutable value handed to the components that need it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/crxup/crxup/internal/browser"
)

// DefaultThreads is the worker pool size used when a config file sets none.
const DefaultThreads = 4

// Config holds one browser's sync configuration.
type Config struct {
	// Path of the config file this was loaded from.
	Path string

	// Branding names the browser flavor (decides the extensions directory).
	Branding string

	// Threads bounds the update worker pool.
	Threads int

	// RemoveOrphans enables deletion of installed extensions that are no
	// longer configured. Off by default: deleting user data is opt-in.
	RemoveOrphans bool

	// Extensions is the configured set of extension IDs, deduplicated,
	// in file order.
	Extensions []string

	// ExtensionsDir is the browser's "External Extensions" directory.
	ExtensionsDir string
}

// Discover returns all config files in the crxup config directory,
// sorted by name.
func Discover() ([]string, error) {
	dir, err := browser.ConfigDir()
	if err != nil {
		return nil, err
	}
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scanning config directory %s: %w", dir, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// Load parses a single config file into an immutable Config.
// Both the main and extensions sections must be present.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(browser.AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	for _, section := range []string{"main", "extensions"} {
		if !v.IsSet(section) {
			return nil, fmt.Errorf("missing section in config file %s: %s", path, section)
		}
	}

	v.SetDefault("main.branding", browser.Default())
	v.SetDefault("main.threads", DefaultThreads)
	v.SetDefault("main.remove_orphans", false)

	cfg := &Config{
		Path:          path,
		Branding:      v.GetString("main.branding"),
		Threads:       v.GetInt("main.threads"),
		RemoveOrphans: v.GetBool("main.remove_orphans"),
		Extensions:    dedupe(v.GetStringSlice("extensions")),
	}
	if cfg.Threads < 1 {
		cfg.Threads = DefaultThreads
	}

	// main.extensions_dir overrides the branding-derived location.
	if dir := v.GetString("main.extensions_dir"); dir != "" {
		cfg.ExtensionsDir = dir
	} else {
		dir, err := browser.ExtensionsDir(cfg.Branding)
		if err != nil {
			return nil, err
		}
		cfg.ExtensionsDir = dir
	}

	return cfg, nil
}

// Preflight verifies the browser user data directory exists and creates the
// extensions directory if necessary. A missing user data directory means the
// browser was never run; installing into it would be useless.
func Preflight(cfg *Config) error {
	userDataDir := filepath.Dir(cfg.ExtensionsDir)
	if _, err := os.Stat(userDataDir); err != nil {
		return fmt.Errorf("missing browser user data directory %s: %w", userDataDir, err)
	}
	if _, err := os.Stat(cfg.ExtensionsDir); os.IsNotExist(err) {
		if err := os.Mkdir(cfg.ExtensionsDir, 0o755); err != nil {
			return fmt.Errorf("creating extensions directory: %w", err)
		}
	}
	return nil
}

// dedupe keeps the first occurrence of each ID, preserving file order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
