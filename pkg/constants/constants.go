// Package constants provides shared constants used throughout labelsync.
// This includes the dataset directory layout, recognized file extensions,
// report limits and file permissions.
package constants

// Dataset layout defaults
const (
	// DefaultRoot is the default dataset root directory
	DefaultRoot = "datasets/tradingview"

	// ImagesDir is the directory under the dataset root holding per-split image folders
	ImagesDir = "images"

	// LabelsDir is the directory under the dataset root holding per-split label folders
	LabelsDir = "labels"

	// LabelExtension is the annotation sidecar extension
	LabelExtension = ".txt"

	// IDSeparator separates the annotation tool's id prefix from the base name
	IDSeparator = "-"
)

// DefaultSplits returns the dataset splits processed when none are configured.
func DefaultSplits() []string {
	return []string{"train", "val", "test"}
}

// DefaultImageExtensions returns the image extensions recognized by the scanner.
func DefaultImageExtensions() []string {
	return []string{".png", ".jpg", ".jpeg"}
}

// DefaultClasses returns the class set used when neither a data.yaml nor a
// classes map is configured.
func DefaultClasses() map[int]string {
	return map[int]string{
		0: "symbol_title",
		1: "last_price_pill",
	}
}

// Limit constants
const (
	// DefaultSampleLimit caps the sample lists kept in a validation report
	DefaultSampleLimit = 5

	// DefaultWorkers is the number of splits processed concurrently
	DefaultWorkers = 3
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)
