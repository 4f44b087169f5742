// Package validator checks the annotation file of every image in a split
// and aggregates the results into a Report. It never mutates the tree.
//
// Every problem is tallied rather than returned: a missing or empty
// annotation file, a line that does not parse, an undeclared class id and
// an out-of-bounds box all land in the report, and validation carries on
// with the next line or image.
package validator

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/utc"

	"github.com/agentstation/labelsync/pkg/constants"
	"github.com/agentstation/labelsync/pkg/dataset"
	"github.com/agentstation/labelsync/pkg/errors"
	"github.com/agentstation/labelsync/pkg/logging"
)

// Validator validates splits against an injected class set.
type Validator struct {
	fs          afero.Fs
	classes     dataset.ClassSet
	sampleLimit int
	logger      *zerolog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithSampleLimit caps each sample list in the report. Values below one
// disable sampling.
func WithSampleLimit(n int) Option {
	return func(v *Validator) {
		v.sampleLimit = n
	}
}

// WithLogger sets the logger. By default the logger is taken from the
// context passed to ValidateSplit.
func WithLogger(logger *zerolog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New creates a validator reading annotation files from fsys.
func New(fsys afero.Fs, classes dataset.ClassSet, opts ...Option) *Validator {
	v := &Validator{
		fs:          fsys,
		classes:     classes,
		sampleLimit: constants.DefaultSampleLimit,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Classes returns the class set the validator checks against.
func (v *Validator) Classes() dataset.ClassSet {
	return v.classes
}

// ValidateSplit validates the annotation file of each image stem, in
// lexicographic order. The only error it returns is cancellation; the
// partial report is returned alongside it.
func (v *Validator) ValidateSplit(ctx context.Context, split string, stems []string, lookup Lookup) (*Report, error) {
	logger := v.loggerFor(ctx).With().Str("split", split).Logger()

	ordered := append([]string(nil), stems...)
	sort.Strings(ordered)

	report := &Report{
		Split:  split,
		Images: len(ordered),
		counts: make(map[int]int, v.classes.Len()),
	}

	for _, stem := range ordered {
		if err := ctx.Err(); err != nil {
			v.finish(report)
			return report, stderrors.Join(errors.ErrCanceled, err)
		}

		path, ok := lookup.Label(stem)
		if !ok {
			report.Missing++
			if len(report.MissingSamples) < v.sampleLimit {
				report.MissingSamples = append(report.MissingSamples, stem)
			}
			continue
		}
		v.checkFile(&logger, report, path)
	}

	v.finish(report)
	logger.Info().
		Int("images", report.Images).
		Int("labeled", report.LabeledImages).
		Int("missing", report.Missing).
		Int("empty", report.Empty).
		Int("parse_errors", report.ParseErrors).
		Int("bad_boxes", report.BadBoxCount).
		Msg("Split validated")
	return report, nil
}

func (v *Validator) checkFile(logger *zerolog.Logger, report *Report, path string) {
	name := filepath.Base(path)
	data, err := afero.ReadFile(v.fs, path)
	if err != nil {
		logger.Warn().Err(errors.WrapIO("read", path, err)).Msg("Cannot read label file")
		report.ParseErrors++
		v.addBadBox(report, BadBox{File: name, Value: ReasonReadError})
		return
	}

	hasBox := false
	nonBlank := 0
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		nonBlank++
		lineNo := i + 1

		rec, err := ParseRecord(line)
		if err != nil {
			logger.Debug().Str("file", name).Int("line", lineNo).Err(err).Msg("Unparseable label line")
			report.ParseErrors++
			v.addBadBox(report, BadBox{File: name, Line: lineNo, Value: ReasonParseError})
			continue
		}
		hasBox = true

		if v.classes.Has(rec.ClassID) {
			report.counts[rec.ClassID]++
		} else {
			report.UnknownClassBoxes++
			if len(report.BadClassIDs) < v.sampleLimit {
				report.BadClassIDs = append(report.BadClassIDs, BadClassID{File: name, Line: lineNo, ClassID: rec.ClassID})
			}
		}

		if !rec.BoxValid() {
			report.BadBoxCount++
			v.addBadBox(report, BadBox{File: name, Line: lineNo, Value: rec.BoxString()})
		}
	}

	switch {
	case nonBlank == 0:
		report.Empty++
	case hasBox:
		report.LabeledImages++
	}
}

func (v *Validator) addBadBox(report *Report, box BadBox) {
	if len(report.BadBoxes) < v.sampleLimit {
		report.BadBoxes = append(report.BadBoxes, box)
	}
}

// finish fills the per-class table and the zero-box warnings.
func (v *Validator) finish(report *Report) {
	report.GeneratedAt = utc.Now()
	report.Classes = make([]ClassCount, 0, v.classes.Len())
	for _, id := range v.classes.IDs() {
		count := report.counts[id]
		report.Classes = append(report.Classes, ClassCount{ID: id, Name: v.classes.Name(id), Count: count})
		if count == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("no '%s' boxes found in this split", v.classes.Name(id)))
		}
	}
}

func (v *Validator) loggerFor(ctx context.Context) *zerolog.Logger {
	if v.logger != nil {
		return v.logger
	}
	return logging.FromContext(ctx)
}
