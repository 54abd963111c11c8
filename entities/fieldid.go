package entities

import "strings"

// FieldIDSeparator splits a qualified field name from its short code,
// e.g. "F001-UsinaGuarani-Piracicaba" -> "F001".
const FieldIDSeparator = "-"

// NormalizeFieldID returns the storage key for a field identifier.
func NormalizeFieldID(id string) string {
	short, _, _ := strings.Cut(id, FieldIDSeparator)
	return short
}
