// Package scanner enumerates image files and annotation files of a
// split-partitioned dataset and extracts each annotation's canonical
// identity. It never mutates the tree.
package scanner

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/labelsync/pkg/constants"
	"github.com/agentstation/labelsync/pkg/dataset"
	"github.com/agentstation/labelsync/pkg/errors"
	"github.com/agentstation/labelsync/pkg/logging"
)

// Scanner reads a dataset tree through an afero filesystem. Modification
// times come from the filesystem's stat, so tests can inject synthetic
// timestamps with Chtimes.
type Scanner struct {
	fs        afero.Fs
	layout    dataset.Layout
	imageExts map[string]struct{}
	labelExt  string
	logger    *zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithImageExtensions replaces the recognized image extensions.
func WithImageExtensions(exts ...string) Option {
	return func(s *Scanner) {
		s.imageExts = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			s.imageExts[normalizeExt(ext)] = struct{}{}
		}
	}
}

// WithLabelExtension sets the annotation file extension.
func WithLabelExtension(ext string) Option {
	return func(s *Scanner) {
		s.labelExt = normalizeExt(ext)
	}
}

// WithLogger sets the scanner's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// New creates a scanner over layout, reading through fsys.
func New(fsys afero.Fs, layout dataset.Layout, opts ...Option) *Scanner {
	s := &Scanner{
		fs:       fsys,
		layout:   layout,
		labelExt: constants.LabelExtension,
		logger:   logging.Default(),
	}
	WithImageExtensions(constants.DefaultImageExtensions()...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fs returns the filesystem the scanner reads from.
func (s *Scanner) Fs() afero.Fs {
	return s.fs
}

// Layout returns the dataset layout.
func (s *Scanner) Layout() dataset.Layout {
	return s.layout
}

// ListImages returns the images of a split sorted by file name. A missing
// image directory yields an empty result.
func (s *Scanner) ListImages(split string) ([]dataset.ImageRecord, error) {
	dir := s.layout.ImageDir(split)
	entries, err := s.readDir(dir)
	if err != nil {
		return nil, err
	}

	records := make([]dataset.ImageRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := s.imageExts[ext]; !ok {
			continue
		}
		records = append(records, dataset.ImageRecord{
			Split: split,
			Stem:  strings.TrimSuffix(name, filepath.Ext(name)),
			Ext:   ext,
			Path:  filepath.Join(dir, name),
		})
	}

	s.logger.Debug().Str("split", split).Str("dir", dir).Int("images", len(records)).Msg("Listed images")
	return records, nil
}

// ListAnnotationCandidates returns the annotation files of a split in
// directory-listing order. A missing label directory yields an empty result.
func (s *Scanner) ListAnnotationCandidates(split string) ([]dataset.AnnotationCandidate, error) {
	candidates, err := s.CollectCandidates(s.layout.LabelDir(split), false)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("split", split).Int("labels", len(candidates)).Msg("Listed annotation candidates")
	return candidates, nil
}

// CollectCandidates returns the annotation files directly under root, or
// anywhere below it when recursive is set, in lexical walk order.
func (s *Scanner) CollectCandidates(root string, recursive bool) ([]dataset.AnnotationCandidate, error) {
	if !recursive {
		entries, err := s.readDir(root)
		if err != nil {
			return nil, err
		}
		candidates := make([]dataset.AnnotationCandidate, 0, len(entries))
		for _, entry := range entries {
			if s.isLabel(entry) {
				candidates = append(candidates, newCandidate(filepath.Join(root, entry.Name()), entry))
			}
		}
		return candidates, nil
	}

	if _, err := s.fs.Stat(root); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.WrapIO("stat", root, err)
	}

	var candidates []dataset.AnnotationCandidate
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.WrapIO("walk", path, err)
		}
		if s.isLabel(info) {
			candidates = append(candidates, newCandidate(path, info))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (s *Scanner) isLabel(info os.FileInfo) bool {
	return !info.IsDir() && strings.EqualFold(filepath.Ext(info.Name()), s.labelExt)
}

// readDir lists dir sorted by name, treating a missing directory as empty.
func (s *Scanner) readDir(dir string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			s.logger.Debug().Str("dir", dir).Msg("Directory absent, treating as empty")
			return nil, nil
		}
		return nil, errors.WrapIO("list", dir, err)
	}
	return entries, nil
}

func newCandidate(path string, info os.FileInfo) dataset.AnnotationCandidate {
	return dataset.NewAnnotationCandidate(path, info.ModTime().UnixNano())
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
