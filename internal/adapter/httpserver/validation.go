package httpserver

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultTimelineLimit applies when the limit query parameter is absent.
const DefaultTimelineLimit = 50

const (
	maxIDLength     = 100
	maxTimelineSize = 200
)

var (
	validID     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	validUserID = regexp.MustCompile(`^[a-zA-Z0-9_.@+-]+$`)
	invalidID   = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func invalid(field, code, msg string) ValidationResult {
	return ValidationResult{Errors: []ValidationError{{Field: field, Code: code, Message: msg}}}
}

// ValidateID validates a path identifier such as a session, test or analysis id.
func ValidateID(field, id string) ValidationResult {
	switch {
	case id == "":
		return invalid(field, "REQUIRED", field+" is required")
	case len(id) > maxIDLength:
		return invalid(field, "TOO_LONG", field+" is too long (max 100 characters)")
	case !validID.MatchString(id):
		return invalid(field, "INVALID_FORMAT", field+" contains invalid characters")
	}
	return ValidationResult{Valid: true}
}

// ValidateUserID is ValidateID with the extra characters e-mail shaped ids use.
func ValidateUserID(id string) ValidationResult {
	switch {
	case id == "":
		return invalid("userId", "REQUIRED", "userId is required")
	case len(id) > maxIDLength:
		return invalid("userId", "TOO_LONG", "userId is too long (max 100 characters)")
	case !validUserID.MatchString(id):
		return invalid("userId", "INVALID_FORMAT", "userId contains invalid characters")
	}
	return ValidationResult{Valid: true}
}

// ParseLimit validates the timeline limit parameter. Empty means DefaultTimelineLimit.
func ParseLimit(limit string) (int, ValidationResult) {
	if limit == "" {
		return DefaultTimelineLimit, ValidationResult{Valid: true}
	}
	n, err := strconv.Atoi(limit)
	if err != nil || n < 1 || n > maxTimelineSize {
		return 0, invalid("limit", "INVALID_FORMAT", "Limit must be between 1 and 200")
	}
	return n, ValidationResult{Valid: true}
}

// SanitizeString strips NUL bytes, trims and caps free text taken from headers.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)
	if len(input) > 1000 {
		input = input[:1000]
	}
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}
	return input
}

// SanitizeID drops characters ValidateID would reject.
func SanitizeID(id string) string {
	id = invalidID.ReplaceAllString(id, "")
	if len(id) > maxIDLength {
		id = id[:maxIDLength]
	}
	return id
}
