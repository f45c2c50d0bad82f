// Package utils provides utility functions for the application.
package utils

import (
	"strings"
)

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// DerefString returns the pointed string or "" for nil
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// SanitizeInput trims surrounding whitespace and strips angle brackets.
// It is not an HTML sanitizer.
func SanitizeInput(s string) string {
	return angleBrackets.Replace(strings.TrimSpace(s))
}

// SanitizeOptional applies SanitizeInput and maps empty results to nil
func SanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := SanitizeInput(*s)
	if v == "" {
		return nil
	}
	return &v
}
