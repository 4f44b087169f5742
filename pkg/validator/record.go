package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/labelsync/pkg/errors"
)

// recordFields is the number of whitespace-separated tokens in a YOLO line.
const recordFields = 5

// Record is one parsed annotation line: a class id and a normalized
// center-format bounding box.
type Record struct {
	ClassID int     `json:"class_id" yaml:"class_id"`
	CenterX float64 `json:"cx" yaml:"cx"`
	CenterY float64 `json:"cy" yaml:"cy"`
	Width   float64 `json:"w" yaml:"w"`
	Height  float64 `json:"h" yaml:"h"`
}

// ParseRecord parses "<class_id> <cx> <cy> <w> <h>". Any other token count
// or a non-numeric token is a *errors.ParseError.
func ParseRecord(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != recordFields {
		return Record{}, &errors.ParseError{
			Format:  "yolo",
			Message: fmt.Sprintf("expected %d tokens, got %d", recordFields, len(fields)),
		}
	}

	classID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Record{}, &errors.ParseError{
			Format:  "yolo",
			Message: fmt.Sprintf("class id %q is not an integer", fields[0]),
			Err:     err,
		}
	}

	var box [4]float64
	for i, tok := range fields[1:] {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Record{}, &errors.ParseError{
				Format:  "yolo",
				Message: fmt.Sprintf("coordinate %q is not a number", tok),
				Err:     err,
			}
		}
		box[i] = v
	}

	return Record{
		ClassID: classID,
		CenterX: box[0],
		CenterY: box[1],
		Width:   box[2],
		Height:  box[3],
	}, nil
}

// BoxValid reports whether 0 <= cx,cy <= 1 and 0 < w,h <= 1.
// NaN never satisfies the bounds.
func (r Record) BoxValid() bool {
	return r.CenterX >= 0 && r.CenterX <= 1 &&
		r.CenterY >= 0 && r.CenterY <= 1 &&
		r.Width > 0 && r.Width <= 1 &&
		r.Height > 0 && r.Height <= 1
}

// BoxString renders the box as "cx,cy,w,h".
func (r Record) BoxString() string {
	return strings.Join([]string{
		strconv.FormatFloat(r.CenterX, 'g', -1, 64),
		strconv.FormatFloat(r.CenterY, 'g', -1, 64),
		strconv.FormatFloat(r.Width, 'g', -1, 64),
		strconv.FormatFloat(r.Height, 'g', -1, 64),
	}, ",")
}
