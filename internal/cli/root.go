package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	verbose bool
	cfgFile string
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "crxup",
	Short: "External extension updater for Chromium-based browsers",
	Long: `crxup keeps externally managed browser extensions in sync with the
Chrome Web Store. For every extension ID in its config files it compares the
installed version with the published one and installs the new package when
they differ. Running crxup with no subcommand performs a sync.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
	RunE: runSync,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Increase output verbosity")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Run against a single config file")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Log decisions without installing or removing anything")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("run failed")
		return err
	}
	return nil
}
