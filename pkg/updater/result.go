package updater

import (
	"fmt"
	"io"
)

// FileResult is the validation outcome for one candidate file.
type FileResult struct {
	// Path is the candidate file as discovered.
	Path string `json:"path" yaml:"path"`

	// Schema is the resolved schema identity, empty when none matched.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// Violations lists every problem found, in check order. Empty means
	// the file passed.
	Violations []string `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// Passed reports whether the file validated cleanly.
func (f FileResult) Passed() bool {
	return len(f.Violations) == 0
}

// Result is the outcome of one batch run.
type Result struct {
	// Files holds per-file outcomes in processing order.
	Files []FileResult `json:"files" yaml:"files"`

	// Committed is true only when every file passed and the archive
	// transaction completed.
	Committed bool `json:"committed" yaml:"committed"`

	Summary Summary `json:"summary" yaml:"summary"`
}

// Summary counts batch outcomes.
type Summary struct {
	Total  int `json:"total" yaml:"total"`
	Passed int `json:"passed" yaml:"passed"`
	Failed int `json:"failed" yaml:"failed"`
}

// HasFailures reports whether any file was rejected. The batch commits
// only when this is false.
func (r *Result) HasFailures() bool {
	return r.Summary.Failed > 0
}

func (r *Result) finish() {
	s := Summary{}
	for _, f := range r.Files {
		s.Total++
		if f.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	r.Summary = s
}

// WriteReport writes the grouped per-file violation report.
func (r *Result) WriteReport(w io.Writer) {
	if !r.HasFailures() {
		fmt.Fprintf(w, "Success. %d table(s) validated.\n", r.Summary.Passed)
		return
	}
	fmt.Fprintf(w, "Validation failed for one or more files:\n\n")
	for _, f := range r.Files {
		if f.Passed() {
			continue
		}
		fmt.Fprintf(w, "--- %s ---\n", f.Path)
		for _, violation := range f.Violations {
			fmt.Fprintf(w, "  * %s\n", violation)
		}
	}
	fmt.Fprintf(w, "\nSummary: %d file(s) passed, %d failed\n", r.Summary.Passed, r.Summary.Failed)
}
