package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nellaby/tableguard/pkg/logger"
	"github.com/nellaby/tableguard/pkg/updater"
)

var updateCmd = &cobra.Command{
	Use:   "update [flags] <input-path>",
	Short: "Validate a batch of table files and commit it to the live store",
	Long: `Validate every candidate table file under the input path (a file or a
directory) against its schema. If every file passes, archive the previous
version of each target table, install the new one, and append one audit
entry per table.

If any file fails, a grouped per-file report is written to stderr and
nothing is committed. Exit codes: 0 on success, 1 on validation or commit
failure, 2 when no candidate files are found.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	initLogging()
	return runPipeline(cmd.Context(), args[0], false)
}

// runPipeline drives validate-only or validate-then-commit runs; the two
// commands differ only in whether a clean batch is committed.
func runPipeline(ctx context.Context, inputPath string, dryRun bool) error {
	u := updater.New(updater.Config{
		TablesDir:  viper.GetString("tables-dir"),
		ArchiveDir: viper.GetString("archive-dir"),
		SchemasDir: viper.GetString("schemas-dir"),
		LogFile:    viper.GetString("log-file"),
		User:       viper.GetString("user"),
	})
	if ctx == nil {
		ctx = context.Background()
	}

	var result *updater.Result
	var err error
	if dryRun {
		result, err = u.Validate(ctx, inputPath)
	} else {
		result, err = u.Run(ctx, inputPath)
	}
	if err != nil {
		if errors.Cause(err) == updater.ErrNoCandidates {
			fmt.Fprintln(os.Stderr, "No candidate table files found in input.")
			os.Exit(2)
		}
		return err
	}

	if err := outputResult(result, viper.GetString("output")); err != nil {
		return err
	}
	if result.HasFailures() {
		os.Exit(1)
	}
	return nil
}

func initLogging() {
	logLevel := slog.LevelWarn
	if viper.GetBool("debug") {
		logLevel = slog.LevelDebug
	} else if viper.GetBool("verbose") {
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(logger.NewWithLevel(logLevel).GetSlogLogger())
}

func outputResult(result *updater.Result, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		return encoder.Encode(result)
	case "text":
		if result.HasFailures() {
			result.WriteReport(os.Stderr)
			return nil
		}
		if result.Committed {
			fmt.Printf("Success. %d table(s) validated and updated.\nLog: %s\n",
				result.Summary.Passed, viper.GetString("log-file"))
		} else {
			fmt.Printf("Success. %d table(s) validated.\n", result.Summary.Passed)
		}
		return nil
	default:
		return errors.Errorf("unsupported output format: %s", format)
	}
}
