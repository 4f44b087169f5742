package validator

import (
	"github.com/agentstation/utc"
)

// Sample reasons recorded in BadBox.Value for lines that never produced a box.
const (
	ReasonParseError = "parse-error"
	ReasonReadError  = "read-error"
)

// BadClassID is a sample of a line whose class id is not declared.
type BadClassID struct {
	File    string `json:"file" yaml:"file"`
	Line    int    `json:"line" yaml:"line"`
	ClassID int    `json:"class_id" yaml:"class_id"`
}

// BadBox is a sample of a line with out-of-bounds geometry, or of a line
// that failed to parse (Value is then a Reason* constant).
type BadBox struct {
	File  string `json:"file" yaml:"file"`
	Line  int    `json:"line" yaml:"line"`
	Value string `json:"value" yaml:"value"`
}

// ClassCount is the box count of one declared class.
type ClassCount struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Report aggregates the validation of one split. It is built by
// ValidateSplit and read-only afterwards.
type Report struct {
	Split       string   `json:"split" yaml:"split"`
	GeneratedAt utc.Time `json:"generated_at" yaml:"generated_at"`

	Images        int `json:"images" yaml:"images"`
	LabeledImages int `json:"labeled_images" yaml:"labeled_images"`
	Missing       int `json:"missing" yaml:"missing"`
	Empty         int `json:"empty" yaml:"empty"`

	Classes           []ClassCount `json:"classes" yaml:"classes"`
	UnknownClassBoxes int          `json:"unknown_class_boxes" yaml:"unknown_class_boxes"`
	ParseErrors       int          `json:"parse_errors" yaml:"parse_errors"`
	BadBoxCount       int          `json:"bad_boxes" yaml:"bad_boxes"`

	// DuplicateGroups is filled in by callers that also scanned the split
	// for unresolved duplicate groups.
	DuplicateGroups int `json:"duplicate_groups" yaml:"duplicate_groups"`

	MissingSamples []string     `json:"missing_samples,omitempty" yaml:"missing_samples,omitempty"`
	BadClassIDs    []BadClassID `json:"bad_class_ids,omitempty" yaml:"bad_class_ids,omitempty"`
	BadBoxes       []BadBox     `json:"bad_box_samples,omitempty" yaml:"bad_box_samples,omitempty"`
	Warnings       []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	counts map[int]int
}

// Count returns the number of boxes recorded for a declared class id.
func (r *Report) Count(classID int) int {
	return r.counts[classID]
}

// MissingRequired returns the required class ids that have zero boxes.
func (r *Report) MissingRequired(required []int) []int {
	var missing []int
	for _, id := range required {
		if r.counts[id] == 0 {
			missing = append(missing, id)
		}
	}
	return missing
}

// Failed reports whether the split fails the validate gate: a required
// class without boxes, or unresolved duplicate groups.
func (r *Report) Failed(required []int) bool {
	return len(r.MissingRequired(required)) > 0 || r.DuplicateGroups > 0
}

// HasIssues reports whether anything beyond plain counts was recorded.
func (r *Report) HasIssues() bool {
	return r.Missing > 0 || r.Empty > 0 || r.UnknownClassBoxes > 0 ||
		r.ParseErrors > 0 || r.BadBoxCount > 0 || len(r.Warnings) > 0
}
