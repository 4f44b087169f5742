// Package emoji provides symbol constants for CLI output.
// These symbols keep status lines consistent across commands.
package emoji

const (
	// Success marks a completed operation or a passing split.
	Success = "✓"

	// Error marks a failed action or a split that fails validation.
	Error = "✗"

	// Warning marks advisory findings such as a class with zero boxes.
	Warning = "!"

	// Info marks informational lines.
	Info = "i"

	// Optional marks skipped work, for example an absent split directory.
	Optional = "-"
)
