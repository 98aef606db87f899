package errors

import (
	"strings"
	"unicode"
)

// ValidateLayoutName validates a saved-layout name for safety and correctness.
// Layout names become file basenames in the file store and document ids in
// the mongo store, so they must not smuggle path components.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - No leading dot
//   - Maximum length of 128 characters
func ValidateLayoutName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFormat, "layout name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidFormat, "layout name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFormat, "layout name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidFormat, "layout name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidFormat, "layout name cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidFormat, "layout name cannot start with a dot")
	}

	return nil
}

// ValidateSessionID validates a session identifier taken from an URL or
// payload. Session ids are uuid strings, but the check is deliberately
// looser so that future id schemes keep working.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidFormat, "session id cannot be empty")
	}

	if len(id) > 64 {
		return New(ErrCodeInvalidFormat, "session id too long (max 64 characters)")
	}

	for _, r := range id {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return New(ErrCodeInvalidFormat, "session id contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateMediaID validates a media profile identifier.
func ValidateMediaID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidMedia, "media id cannot be empty")
	}

	if len(id) > 64 {
		return New(ErrCodeInvalidMedia, "media id too long (max 64 characters)")
	}

	for _, r := range id {
		if !unicode.IsLower(r) && !unicode.IsDigit(r) && r != '-' {
			return New(ErrCodeInvalidMedia, "media id must be lowercase alphanumeric with dashes, got %q", r)
		}
	}

	return nil
}
