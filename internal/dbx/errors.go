package dbx

import "strings"

// The sqlite driver surfaces constraint violations as plain errors with a
// stable message prefix rather than typed values, so classification is done
// on the message text.

// IsUniqueViolation reports whether err is a primary-key or unique
// constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "SQLITE_CONSTRAINT_PRIMARYKEY")
}

// IsForeignKeyViolation reports whether err is a foreign-key constraint
// failure.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed") ||
		strings.Contains(err.Error(), "SQLITE_CONSTRAINT_FOREIGNKEY")
}
