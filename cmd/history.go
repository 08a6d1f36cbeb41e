package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nellaby/tableguard/pkg/audit"
)

var historyCmd = &cobra.Command{
	Use:   "history [flags]",
	Short: "Show the audit log of table updates",
	Long: `Print entries from the append-only audit log, oldest first. Each entry
records who replaced which table, when, the content hashes and row counts
before and after, and where the previous version was archived.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 0, "show only the most recent N entries (0 = all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	initLogging()

	entries, err := audit.ReadAll(viper.GetString("log-file"))
	if err != nil {
		return err
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	switch format := viper.GetString("output"); format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		return encoder.Encode(entries)
	case "text":
		if len(entries) == 0 {
			fmt.Println("No audit entries.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %s  %s by %s (%d rows", e.TimestampUTC, e.Action, e.Table, e.User, e.NewRows)
			if e.OldRows != nil {
				fmt.Printf(", was %d", *e.OldRows)
			}
			fmt.Print(")")
			if e.ArchivePath != nil {
				fmt.Printf("  archived: %s", *e.ArchivePath)
			}
			fmt.Println()
		}
		return nil
	default:
		return errors.Errorf("unsupported output format: %s", format)
	}
}
