package utils

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
)

var hexColor = regexp.MustCompile(`(?i)^#[0-9A-F]{6}$`)

// Validator collects field errors before a request touches storage.
type Validator struct {
	fields []apperrors.FieldError
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.fields = append(v.fields, apperrors.FieldError{Field: field, Message: message})
	}
}

// Err returns a validation error, or nil when every check passed.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return apperrors.Validation(v.fields...)
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}

func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// IsURL accepts absolute http(s) URLs with a host.
func IsURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
