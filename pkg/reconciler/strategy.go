package reconciler

import (
	"fmt"
	"strings"

	"github.com/agentstation/labelsync/pkg/dataset"
	"github.com/agentstation/labelsync/pkg/errors"
)

// StrategyType represents the keep-policy used to pick a group's survivor.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

const (
	// StrategyTypeMtime keeps the candidate with the newest modification time.
	StrategyTypeMtime StrategyType = "mtime"
	// StrategyTypeIDLex keeps the candidate with the lexicographically greatest id prefix.
	StrategyTypeIDLex StrategyType = "id_lex"
)

// StrategyTypes returns every supported strategy type.
func StrategyTypes() []StrategyType {
	return []StrategyType{StrategyTypeMtime, StrategyTypeIDLex}
}

// Strategy decides which candidate of a duplicate group survives.
type Strategy interface {
	// Type returns the strategy type
	Type() StrategyType

	// Description returns a human-readable description
	Description() string

	// Pick returns the index of the survivor within group. group is in
	// directory-listing order and has at least one element; ties go to the
	// earliest candidate.
	Pick(group []dataset.AnnotationCandidate) int
}

// baseStrategy provides common strategy functionality.
type baseStrategy struct {
	typ         StrategyType
	description string
}

// Type returns the strategy type.
func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

// Description returns a human-readable description.
func (s *baseStrategy) Description() string {
	return s.description
}

// MtimeStrategy keeps the newest file.
type MtimeStrategy struct {
	baseStrategy
}

// NewMtimeStrategy creates the default newest-wins strategy.
func NewMtimeStrategy() Strategy {
	return &MtimeStrategy{
		baseStrategy: baseStrategy{
			typ:         StrategyTypeMtime,
			description: "Keeps the file with the newest modification time",
		},
	}
}

// Pick returns the candidate with the largest ModTime.
func (s *MtimeStrategy) Pick(group []dataset.AnnotationCandidate) int {
	best := 0
	for i := 1; i < len(group); i++ {
		if group[i].ModTime > group[best].ModTime {
			best = i
		}
	}
	return best
}

// IDLexStrategy keeps the file whose id prefix sorts last.
type IDLexStrategy struct {
	baseStrategy
}

// NewIDLexStrategy creates the lexicographic-id strategy.
func NewIDLexStrategy() Strategy {
	return &IDLexStrategy{
		baseStrategy: baseStrategy{
			typ:         StrategyTypeIDLex,
			description: "Keeps the file with the lexicographically greatest id prefix",
		},
	}
}

// Pick returns the candidate with the greatest id. Unprefixed candidates
// sort as the empty string.
func (s *IDLexStrategy) Pick(group []dataset.AnnotationCandidate) int {
	best := 0
	for i := 1; i < len(group); i++ {
		if group[i].ID > group[best].ID {
			best = i
		}
	}
	return best
}

// ParseStrategy returns the strategy registered under name.
func ParseStrategy(name string) (Strategy, error) {
	switch StrategyType(strings.ToLower(strings.TrimSpace(name))) {
	case StrategyTypeMtime, "":
		return NewMtimeStrategy(), nil
	case StrategyTypeIDLex:
		return NewIDLexStrategy(), nil
	default:
		return nil, errors.NewConfigError("reconciler",
			fmt.Sprintf("unknown keep strategy %q (want one of %v)", name, StrategyTypes()), nil)
	}
}
