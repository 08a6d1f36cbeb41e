package cmd

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flags] <input-path>",
	Short: "Validate a batch of table files without committing",
	Long: `Run the validation phase only: resolve a schema for every candidate file
under the input path and report violations. The live table store and the
audit log are never written.

Exit codes match the update command: 0 when every file passes, 1 on
validation failure, 2 when no candidate files are found.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	initLogging()
	return runPipeline(cmd.Context(), args[0], true)
}
