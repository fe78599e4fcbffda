package cli

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/crxup/crxup/internal/config"
	"github.com/crxup/crxup/internal/installstore"
	"github.com/crxup/crxup/internal/syncer"
	"github.com/crxup/crxup/internal/webstore"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Update all configured extensions",
	Long: `Run the update pass over every config file: resolve the latest
published version of each configured extension, install the ones that are
outdated, and optionally remove extensions no longer configured.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	files, err := configFiles()
	if err != nil {
		return err
	}

	client := webstore.New()

	for _, path := range files {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := config.Preflight(cfg); err != nil {
			return err
		}

		store, err := installstore.New(cfg.ExtensionsDir)
		if err != nil {
			return err
		}

		s := syncer.New(cfg, store, client,
			syncer.WithDryRun(dryRun),
			syncer.WithLogger(log.With().Str("config", filepath.Base(path)).Logger()),
		)
		if err := s.Run(cmd.Context()); err != nil {
			return err
		}
	}
	return nil
}

// configFiles resolves the set of config files for this invocation:
// the --config flag if given, otherwise everything in the config directory.
func configFiles() ([]string, error) {
	if cfgFile != "" {
		return []string{cfgFile}, nil
	}
	files, err := config.Discover()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no configuration files found")
	}
	return files, nil
}
