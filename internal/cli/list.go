package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crxup/crxup/internal/config"
	"github.com/crxup/crxup/internal/installstore"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed extensions",
	Long:  `List the installed extensions and their versions for every configured browser.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents one installed extension for display.
type listEntry struct {
	Branding string `json:"branding"`
	ID       string `json:"id"`
	Version  string `json:"version"`
}

func runList(cmd *cobra.Command, args []string) error {
	files, err := configFiles()
	if err != nil {
		return err
	}

	var entries []listEntry
	for _, path := range files {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		store, err := installstore.New(cfg.ExtensionsDir)
		if err != nil {
			return err
		}

		ids, err := store.List()
		if err != nil {
			return err
		}
		for _, id := range ids {
			entries = append(entries, listEntry{
				Branding: cfg.Branding,
				ID:       id,
				Version:  store.InstalledVersion(id),
			})
		}
	}

	if listJSON {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling list output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No extensions installed yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BROWSER\tID\tVERSION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Branding, e.ID, e.Version)
	}
	return w.Flush()
}
