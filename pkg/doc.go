// Package pkg groups the tableguard libraries: schema-driven validation of
// tabular data files and the archive-and-replace transaction behind the CLI.
//
// # Package Structure
//
//   - updater: high-level API running the full validate-then-commit pipeline
//     (recommended starting point)
//   - validator: the rule engine applying one schema to one parsed table
//   - schema: declarative schema documents and candidate-file resolution
//   - table: the in-memory table value and the csv/tsv/xlsx loader
//   - store: the live table store, a directory keyed by table identity
//   - archive: the per-table archive, replace, and audit transaction
//   - audit: the append-only JSON-lines update log
//   - logger: logging abstraction layer
//
// # Getting Started
//
// For most use cases, start with the updater package:
//
//	import "github.com/nellaby/tableguard/pkg/updater"
//
//	func main() {
//	    u := updater.New(updater.Config{
//	        TablesDir:  "tables",
//	        ArchiveDir: "archive",
//	        SchemasDir: "schemas",
//	        LogFile:    "updates.log",
//	        User:       "curator",
//	    })
//	    result, err := u.Run(context.Background(), "uploads/")
//	    // Inspect result.Files, result.Committed...
//	}
//
// # Error Handling
//
// Pipeline operations distinguish between:
//   - Validation findings (collected per file in Result, never raised)
//   - Configuration faults and commit-phase I/O failures (returned as error)
//
// A batch commits only when every file validated cleanly; a commit-phase
// error is surfaced distinctly because it can leave the store partially
// updated.
package pkg
