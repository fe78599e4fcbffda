package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/crxup/crxup/internal/config"
	"github.com/crxup/crxup/internal/installstore"
)

var printer = message.NewPrinter(language.English)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check install records for problems",
	Long: `Validate every install record in the configured extension directories:
schema-check the record files and verify each record points at an existing
package file. Exits non-zero when problems are found.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	files, err := configFiles()
	if err != nil {
		return err
	}

	var checked, problems int
	out := cmd.OutOrStdout()

	for _, path := range files {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		records, err := filepath.Glob(filepath.Join(cfg.ExtensionsDir, "*.json"))
		if err != nil {
			return fmt.Errorf("scanning %s: %w", cfg.ExtensionsDir, err)
		}

		for _, recPath := range records {
			checked++
			id := strings.TrimSuffix(filepath.Base(recPath), ".json")

			data, err := os.ReadFile(recPath)
			if err != nil {
				problems++
				fmt.Fprintf(out, "FAIL %s: unreadable record: %v\n", id, err)
				continue
			}

			result, err := installstore.ValidateRecord(data)
			if err != nil {
				problems++
				fmt.Fprintf(out, "FAIL %s: %v\n", id, err)
				continue
			}
			if !result.Valid {
				problems++
				for _, issue := range result.Issues {
					fmt.Fprintf(out, "FAIL %s: %s %s\n", id, issue.Path, issue.Message)
				}
				continue
			}

			// Schema-valid record: the referenced package must exist.
			var rec installstore.Record
			if err := json.Unmarshal(data, &rec); err != nil {
				problems++
				fmt.Fprintf(out, "FAIL %s: %v\n", id, err)
				continue
			}
			crxPath := filepath.Join(cfg.ExtensionsDir, rec.CRX)
			if _, err := os.Stat(crxPath); err != nil {
				problems++
				fmt.Fprintf(out, "FAIL %s: record references missing package %s\n", id, rec.CRX)
				continue
			}

			fmt.Fprintf(out, "OK   %s (%s)\n", id, rec.Version)
		}
	}

	printer.Fprintf(out, "%d record(s) checked, %d problem(s) found\n", checked, problems)
	if problems > 0 {
		return fmt.Errorf("%d invalid install record(s)", problems)
	}
	return nil
}
