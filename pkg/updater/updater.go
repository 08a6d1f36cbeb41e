// Package updater orchestrates the two-phase pipeline: validate every
// candidate file against its schema, then, only when the whole batch is
// clean, archive and replace each target table.
//
// # Quick Start
//
//	u := updater.New(updater.Config{
//	    TablesDir:  "tables",
//	    ArchiveDir: "archive",
//	    SchemasDir: "schemas",
//	    LogFile:    "updates.log",
//	    User:       "curator",
//	})
//	result, err := u.Run(context.Background(), "uploads/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.HasFailures() {
//	    result.WriteReport(os.Stderr)
//	}
package updater

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/nellaby/tableguard/pkg/archive"
	"github.com/nellaby/tableguard/pkg/audit"
	"github.com/nellaby/tableguard/pkg/schema"
	"github.com/nellaby/tableguard/pkg/store"
	"github.com/nellaby/tableguard/pkg/table"
	"github.com/nellaby/tableguard/pkg/validator"
)

// ErrNoCandidates is returned when the input path yields no table files.
var ErrNoCandidates = errors.New("no candidate table files found in input")

// lockFileName is the advisory lock taken over the live store for the
// duration of the commit phase.
const lockFileName = ".tableguard.lock"

// Config carries every directory and identity the pipeline needs. There
// are no package-level defaults; the CLI owns the conventional names.
type Config struct {
	TablesDir  string
	ArchiveDir string
	SchemasDir string
	LogFile    string
	User       string
}

// Updater runs the validate-then-commit pipeline for one configuration.
type Updater struct {
	cfg Config
}

// New creates an Updater with the given configuration.
func New(cfg Config) *Updater {
	return &Updater{cfg: cfg}
}

// Validate runs the validation phase only and never writes to the live
// store or the audit log.
func (u *Updater) Validate(ctx context.Context, inputPath string) (*Result, error) {
	result, _, err := u.validateBatch(ctx, inputPath)
	return result, err
}

// Run validates every candidate and, when no file has violations, commits
// the whole batch. A single failing file blocks every table, including
// ones that validated cleanly.
func (u *Updater) Run(ctx context.Context, inputPath string) (*Result, error) {
	result, passed, err := u.validateBatch(ctx, inputPath)
	if err != nil {
		return result, err
	}
	if result.HasFailures() {
		slog.Debug("Batch rejected, nothing committed", "failed", result.Summary.Failed)
		return result, nil
	}

	if err := os.MkdirAll(u.cfg.TablesDir, 0o755); err != nil {
		return result, errors.Wrapf(err, "failed to create tables directory %s", u.cfg.TablesDir)
	}

	// One committer at a time per live store. Released on every exit path.
	lock := flock.New(filepath.Join(u.cfg.TablesDir, lockFileName))
	if err := lock.Lock(); err != nil {
		return result, errors.Wrap(err, "failed to lock live table store")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("Failed to release store lock", "error", err)
		}
	}()

	tx := archive.New(store.New(u.cfg.TablesDir), u.cfg.ArchiveDir, u.cfg.User, audit.NewLog(u.cfg.LogFile))
	if err := tx.Commit(passed); err != nil {
		return result, err
	}
	result.Committed = true
	slog.Debug("Batch committed", "tables", len(passed))
	return result, nil
}

func (u *Updater) validateBatch(ctx context.Context, inputPath string) (*Result, []archive.Pair, error) {
	files, err := discoverCandidates(inputPath)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("Discovered candidate files", "count", len(files))

	idx, err := schema.Load(u.cfg.SchemasDir)
	if err != nil {
		return nil, nil, err
	}

	st := store.New(u.cfg.TablesDir)
	result := &Result{}
	var passed []archive.Pair

	for _, f := range files {
		select {
		case <-ctx.Done():
			result.finish()
			return result, nil, ctx.Err()
		default:
		}

		fr := FileResult{Path: f}
		sch := idx.Resolve(f)
		switch {
		case sch == nil:
			fr.Violations = []string{
				"No matching schema found in " + u.cfg.SchemasDir + " for file " + filepath.Base(f),
			}
		default:
			fr.Schema = sch.Identity()
			tbl, err := table.Load(f)
			if err != nil {
				fr.Violations = []string{"Failed to read table: " + err.Error()}
				break
			}
			violations, err := validator.Validate(tbl, sch, st)
			if err != nil {
				// Schema-authoring fault: abort the run, this is not a
				// data-quality outcome.
				return nil, nil, err
			}
			fr.Violations = violations
		}

		result.Files = append(result.Files, fr)
		if fr.Passed() {
			passed = append(passed, archive.Pair{Source: f, Schema: sch})
		}
	}

	result.finish()
	return result, passed, nil
}

// discoverCandidates lists the candidate table files under the input path
// in sorted order. A single-file input is accepted as-is; its readability
// is judged during validation.
func discoverCandidates(inputPath string) ([]string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, errors.Wrapf(err, "input not found: %s", inputPath)
	}
	if !info.IsDir() {
		return []string{inputPath}, nil
	}

	var files []string
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && table.IsTableFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan input directory %s", inputPath)
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoCandidates, "%s", inputPath)
	}
	sort.Strings(files)
	return files, nil
}
