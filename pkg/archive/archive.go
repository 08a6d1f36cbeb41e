// Package archive implements the archive-and-replace transaction: for each
// validated table, rotate the previous live copy into a dated archive
// directory, install the new file, and append one audit entry.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/nellaby/tableguard/pkg/audit"
	"github.com/nellaby/tableguard/pkg/schema"
	"github.com/nellaby/tableguard/pkg/store"
	"github.com/nellaby/tableguard/pkg/table"
)

// Pair is one validated candidate awaiting commit.
type Pair struct {
	Source string
	Schema *schema.Schema
}

// Target returns the live-store identity for the pair: the schema identity
// when present, else the source base name.
func (p Pair) Target() string {
	if id := p.Schema.Identity(); id != "" {
		return id
	}
	return filepath.Base(p.Source)
}

// Transaction commits validated tables into the live store. Atomicity
// holds per table (archive, copy, log), not across the batch: a failure
// mid-batch leaves earlier tables committed and later ones untouched.
type Transaction struct {
	Store      *store.Store
	ArchiveDir string
	User       string
	Log        *audit.Log

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// New returns a transaction writing into the given store and archive root.
func New(st *store.Store, archiveDir, user string, log *audit.Log) *Transaction {
	return &Transaction{Store: st, ArchiveDir: archiveDir, User: user, Log: log, now: time.Now}
}

// Commit processes every pair in input order. The returned error marks a
// commit-phase failure, distinct from validation outcomes, and names the
// table at which the batch stopped.
func (t *Transaction) Commit(pairs []Pair) error {
	if err := os.MkdirAll(t.Store.Root(), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create tables directory %s", t.Store.Root())
	}
	for _, p := range pairs {
		if err := t.commitOne(p); err != nil {
			return errors.Wrapf(err, "commit failed for table %s (live store may be partially updated)", p.Target())
		}
	}
	return nil
}

func (t *Transaction) commitOne(p Pair) error {
	target := p.Target()
	targetPath := t.Store.Path(target)
	slog.Debug("Committing table", "source", p.Source, "target", target)

	var oldHash *string
	var oldRows *int
	var archivePath *string

	if t.Store.Exists(target) {
		h, err := sha256File(targetPath)
		if err != nil {
			return errors.Wrapf(err, "failed to hash live table %s", targetPath)
		}
		oldHash = &h
		// An unreadable live table still gets archived; its row count is
		// recorded as unknown.
		if n, err := table.RowCount(targetPath); err == nil {
			oldRows = &n
		} else {
			slog.Warn("Could not count rows of live table", "path", targetPath, "error", err)
		}

		dated := filepath.Join(t.ArchiveDir, t.now().UTC().Format("2006-01-02"))
		if err := os.MkdirAll(dated, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create archive directory %s", dated)
		}
		dest := filepath.Join(dated, filepath.Base(targetPath))
		if err := moveFile(targetPath, dest); err != nil {
			return errors.Wrapf(err, "failed to archive %s", targetPath)
		}
		archivePath = &dest
		slog.Debug("Archived previous version", "path", dest)
	}

	if err := copyFile(p.Source, targetPath); err != nil {
		return errors.Wrapf(err, "failed to install %s", p.Source)
	}

	newHash, err := sha256File(targetPath)
	if err != nil {
		return errors.Wrapf(err, "failed to hash installed table %s", targetPath)
	}
	newRows, err := table.RowCount(targetPath)
	if err != nil {
		return errors.Wrapf(err, "failed to count rows of installed table %s", targetPath)
	}

	source, err := filepath.Abs(p.Source)
	if err != nil {
		source = p.Source
	}
	return t.Log.Append(audit.Entry{
		TimestampUTC: t.now().UTC().Format(audit.TimeLayout),
		User:         t.User,
		Table:        target,
		Source:       source,
		Action:       "update",
		OldSHA256:    oldHash,
		NewSHA256:    newHash,
		OldRows:      oldRows,
		NewRows:      newRows,
		ArchivePath:  archivePath,
	})
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// moveFile renames, falling back to copy+remove across filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile copies contents and preserves mode and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
