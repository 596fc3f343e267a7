package validation

import (
	"regexp"
	"strings"
)

// Validation rule patterns
var (
	// EmailPattern accepts lowercased addresses only; callers normalise first
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Password length bounds. bcrypt ignores bytes past 72.
	PasswordMinLength = 1
	PasswordMaxLength = 72

	// Name validation min/max length
	NameMinLength = 1
	NameMaxLength = 255

	// Client storage keys
	StorageKeyMaxLength = 128
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email      *regexp.Regexp
	StorageKey *regexp.Regexp
}{
	Email:      regexp.MustCompile(EmailPattern),
	StorageKey: regexp.MustCompile(`^[A-Za-z0-9_.:\-]+$`),
}

// StringValidation is a chainable check of a single string value
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new required string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}

	// Skip other validations for empty optional values
	if !v.Required && v.Value == "" {
		return true
	}

	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether a normalised address is well formed
func IsValidEmail(email string) bool {
	return NewStringValidation(email).WithMaxLength(255).WithPattern(CompiledPatterns.Email).Validate()
}

// IsValidName reports whether a display name has an acceptable length
func IsValidName(name string) bool {
	return NewStringValidation(strings.TrimSpace(name)).
		WithMinLength(NameMinLength).
		WithMaxLength(NameMaxLength).
		Validate()
}

// IsValidStorageKey reports whether key can address a client storage entry
func IsValidStorageKey(key string) bool {
	return NewStringValidation(key).
		WithMaxLength(StorageKeyMaxLength).
		WithPattern(CompiledPatterns.StorageKey).
		Validate()
}

// PasswordProblem describes why a password is rejected, or returns "" if it is acceptable
func PasswordProblem(password string) string {
	if len(password) < PasswordMinLength {
		return "password is required"
	}
	if len(password) > PasswordMaxLength {
		return "password must be at most 72 bytes long"
	}
	if strings.TrimSpace(password) == "" {
		return "password cannot be blank"
	}
	return ""
}
