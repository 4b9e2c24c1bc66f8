// Package errmsg formats errors for the status line.
package errmsg

import "fmt"

// Op names an operation that can fail in front of the user.
type Op string

const (
	// Menu operations
	OpMenuRefresh Op = "refresh menu"
	OpMenuLoad    Op = "load cached menu"

	// Account operations
	OpLogin Op = "sign in"

	// Card operations
	OpPreviewLoad Op = "load preview"
	OpMenuOpen    Op = "open full menu"
	OpMenuCopy    Op = "copy menu link"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith adds the subject of the operation, such as a slug or a product name.
func FormatWith(op Op, subject string, err error) string {
	if err == nil {
		return ""
	}
	if subject == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, subject, err)
}
