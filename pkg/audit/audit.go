// Package audit maintains the append-only update log: one self-contained
// JSON record per line, one entry per committed table.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// TimeLayout is the entry timestamp format: UTC, second precision.
const TimeLayout = "2006-01-02T15:04:05Z"

// Entry is one audit record. Nullable fields are pointers and serialize
// as JSON null, never omitted, so every line carries the full field set.
type Entry struct {
	TimestampUTC string  `json:"timestamp_utc" yaml:"timestamp_utc"`
	User         string  `json:"user" yaml:"user"`
	Table        string  `json:"table" yaml:"table"`
	Source       string  `json:"source" yaml:"source"`
	Action       string  `json:"action" yaml:"action"`
	OldSHA256    *string `json:"old_sha256" yaml:"old_sha256"`
	NewSHA256    string  `json:"new_sha256" yaml:"new_sha256"`
	OldRows      *int    `json:"old_rows" yaml:"old_rows"`
	NewRows      int     `json:"new_rows" yaml:"new_rows"`
	ArchivePath  *string `json:"archive_path" yaml:"archive_path"`
}

// Now returns the current UTC time formatted for an entry timestamp.
func Now() string {
	return time.Now().UTC().Format(TimeLayout)
}

// Log appends entries to a log file. Each append opens, writes one
// terminated line, and closes, so a failed write never corrupts earlier
// entries.
type Log struct {
	path string
}

// NewLog returns a log writing to path. The file is created on first append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Append serializes the entry and appends it as one line.
func (l *Log) Append(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "failed to serialize audit entry")
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open audit log %s", l.path)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return errors.Wrapf(err, "failed to append to audit log %s", l.path)
	}
	return nil
}

// ReadAll parses every entry in the log, oldest first. A missing log file
// yields an empty slice.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to open audit log %s", path)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, errors.Wrapf(err, "malformed audit entry at line %d", len(entries)+1)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read audit log %s", path)
	}
	return entries, nil
}
