// Package uuid generates and validates the identifiers used as primary keys.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a time-ordered UUIDv7 string. Rows inserted later sort after
// earlier ones, which keeps primary key indexes append-mostly.
func New() (string, error) {
	id, err := googleuuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Parse validates s and returns it in canonical lower-case form.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid reports whether s is a UUID in any accepted form.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
