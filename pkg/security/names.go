// Package security validates client supplied names before they reach the filesystem.
package security

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptyName    = errors.New("no release name")
	ErrPathEscape   = errors.New("release name escapes the subtitles directory")
	ErrInvalidChars = errors.New("release name contains control characters")
	ErrNameTooLong  = errors.New("release name too long")

	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// NameValidator checks slash separated release names relative to a base directory.
type NameValidator struct {
	maxSegment int
	maxTotal   int
}

// NewNameValidator creates a validator with common filesystem limits
func NewNameValidator() *NameValidator {
	return &NameValidator{
		maxSegment: 255,
		maxTotal:   4096,
	}
}

// Validate rejects empty names, ".." segments and backslashes, control
// characters, and names longer than the filesystem allows.
func (v *NameValidator) Validate(name string) error {
	name = strings.TrimPrefix(name, "/")
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > v.maxTotal {
		return ErrNameTooLong
	}
	if controlChars.MatchString(name) {
		return ErrInvalidChars
	}

	for _, segment := range strings.Split(name, "/") {
		if segment == ".." || strings.Contains(segment, `\`) {
			return ErrPathEscape
		}
		if len(segment) > v.maxSegment {
			return ErrNameTooLong
		}
	}
	return nil
}
