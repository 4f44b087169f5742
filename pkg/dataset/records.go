package dataset

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentstation/labelsync/pkg/constants"
)

// ImageRecord is an image file found in a split's image directory.
type ImageRecord struct {
	Split string
	Stem  string // file name without extension, the image identity
	Ext   string // lower-cased, with leading dot
	Path  string
}

// Stems returns the sorted, de-duplicated stems of the given records.
func Stems(records []ImageRecord) []string {
	seen := make(map[string]struct{}, len(records))
	stems := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Stem]; ok {
			continue
		}
		seen[r.Stem] = struct{}{}
		stems = append(stems, r.Stem)
	}
	sort.Strings(stems)
	return stems
}

// StemSet returns the stems of the given records as a set.
func StemSet(records []ImageRecord) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		set[r.Stem] = struct{}{}
	}
	return set
}

// AnnotationCandidate is one annotation file together with the identity
// parsed from its name. Several candidates in one directory may share a
// Base; those form a duplicate group.
type AnnotationCandidate struct {
	Dir       string
	Name      string // raw file name, including extension
	Path      string
	ID        string // id prefix, empty when HasPrefix is false
	HasPrefix bool
	Base      string // canonical base name (stem with the id prefix removed)
	Ext       string
	ModTime   int64 // modification time, unix nanoseconds
}

// NewAnnotationCandidate builds a candidate for the file at path.
func NewAnnotationCandidate(path string, modTime int64) AnnotationCandidate {
	dir, name := filepath.Split(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	id, base, ok := SplitIDPrefix(stem)
	return AnnotationCandidate{
		Dir:       filepath.Clean(dir),
		Name:      name,
		Path:      path,
		ID:        id,
		HasPrefix: ok,
		Base:      base,
		Ext:       ext,
		ModTime:   modTime,
	}
}

// CanonicalName returns the file name the candidate has once reconciled.
func (c AnnotationCandidate) CanonicalName() string {
	return c.Base + c.Ext
}

// CanonicalPath returns <dir>/<base><ext>.
func (c AnnotationCandidate) CanonicalPath() string {
	return filepath.Join(c.Dir, c.CanonicalName())
}

// IsCanonical reports whether the candidate already sits at its canonical path.
func (c AnnotationCandidate) IsCanonical() bool {
	return !c.HasPrefix
}

// GroupKey identifies the duplicate group a candidate belongs to.
type GroupKey struct {
	Dir  string
	Base string
}

// Key returns the candidate's group key.
func (c AnnotationCandidate) Key() GroupKey {
	return GroupKey{Dir: c.Dir, Base: c.Base}
}

// SplitIDPrefix splits a file stem of the form "<id>-<rest>" at the first
// separator. The id must be non-empty and so must the rest; otherwise the
// stem has no prefix and is returned unchanged as the base.
func SplitIDPrefix(stem string) (id, base string, ok bool) {
	idx := strings.Index(stem, constants.IDSeparator)
	if idx <= 0 || idx == len(stem)-len(constants.IDSeparator) {
		return "", stem, false
	}
	return stem[:idx], stem[idx+len(constants.IDSeparator):], true
}

// DuplicateGroups returns the keys shared by two or more candidates, in
// order of first appearance.
func DuplicateGroups(candidates []AnnotationCandidate) []GroupKey {
	counts := make(map[GroupKey]int, len(candidates))
	var order []GroupKey
	for _, c := range candidates {
		key := c.Key()
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	var dups []GroupKey
	for _, key := range order {
		if counts[key] > 1 {
			dups = append(dups, key)
		}
	}
	return dups
}
