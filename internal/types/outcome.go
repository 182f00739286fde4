package types

import (
	"regexp"

	"github.com/google/uuid"
)

// FailureMessage is reported for every court whose task exhausted its attempts.
const FailureMessage = "Tried multiple times, unable to get. Try refreshing page and try again."

// TimeoutMessage is reported for every court whose task exceeded its time budget.
const TimeoutMessage = "Timed out waiting for court to finish."

// OutcomeStatus is the terminal state of a task.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailure OutcomeStatus = "failure"
)

// TaskOutcome is produced exactly once per submitted court task.
type TaskOutcome struct {
	CourtName    string           `json:"court"`
	Selector     LocationSelector `json:"selector"`
	Status       OutcomeStatus    `json:"status"`
	ArtifactPath string           `json:"file,omitempty"`
	Message      string           `json:"error,omitempty"`
	Attempts     int              `json:"attempts"`
}

// Succeeded reports whether the task produced an artifact.
func (o TaskOutcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// RunSummary is the externally observable result of a bulk run.
type RunSummary struct {
	RunID       uuid.UUID     `json:"run_id"`
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Outcomes    []TaskOutcome `json:"outcomes"`
	BundlePath  string        `json:"bundle_path,omitempty"`
	BundleError string        `json:"bundle_error,omitempty"`
}

// Failures returns the failure ledger in outcome order.
func (s *RunSummary) Failures() []TaskOutcome {
	var out []TaskOutcome
	for _, o := range s.Outcomes {
		if !o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

// Artifacts returns the paths of all successful documents in outcome order.
func (s *RunSummary) Artifacts() []string {
	var out []string
	for _, o := range s.Outcomes {
		if o.Succeeded() {
			out = append(out, o.ArtifactPath)
		}
	}
	return out
}

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFileName replaces characters that are not allowed in file names.
func SanitizeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}
