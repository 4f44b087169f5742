package dataset

import (
	"path/filepath"

	"github.com/agentstation/labelsync/pkg/constants"
)

// Layout describes where images and labels live under a dataset root.
type Layout struct {
	Root      string
	ImagesDir string
	LabelsDir string
}

// NewLayout returns the standard images/ + labels/ layout under root.
func NewLayout(root string) Layout {
	return Layout{
		Root:      root,
		ImagesDir: constants.ImagesDir,
		LabelsDir: constants.LabelsDir,
	}
}

// ImageDir returns the image directory of a split.
func (l Layout) ImageDir(split string) string {
	return filepath.Join(l.Root, l.ImagesDir, split)
}

// LabelDir returns the annotation directory of a split.
func (l Layout) LabelDir(split string) string {
	return filepath.Join(l.Root, l.LabelsDir, split)
}

// LabelsRoot returns the directory holding every split's annotation directory.
func (l Layout) LabelsRoot() string {
	return filepath.Join(l.Root, l.LabelsDir)
}
