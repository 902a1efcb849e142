// Package validate provides input validation helpers for the timesheets CLI.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/timesheets-app/timesheets/internal/errors"
	"github.com/timesheets-app/timesheets/internal/model"
)

const (
	// MaxURLLength is the maximum length for a server link.
	MaxURLLength = 2048
	// MaxNameLength is the maximum length for a record name.
	MaxNameLength = 256
	// MaxNoteLength is the maximum length for a note or description.
	MaxNoteLength = 16384
	// MaxColorIndex is the highest palette index.
	MaxColorIndex = 11
)

// Name validates a record name such as a project, task or account name.
func Name(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewUserError(field+" name cannot be empty", "Provide a "+field+" name")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return errors.NewUserErrorWithField(field, name,
			field+" name too long",
			fmt.Sprintf("Names must be %d characters or fewer", MaxNameLength))
	}
	return nil
}

// Note validates a note/description.
func Note(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return errors.NewUserError(
			"Note too long",
			fmt.Sprintf("Notes must be %d characters or fewer", MaxNoteLength))
	}
	return nil
}

// HexColor validates a hex color code.
func HexColor(color string) error {
	if color == "" {
		return nil // Empty is allowed (no color)
	}
	if !strings.HasPrefix(color, "#") {
		return errors.NewUserErrorWithField("color", color,
			"Invalid color format",
			"Use hex format like '#FF5733' or '#00FF00'")
	}
	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 {
		return errors.NewUserErrorWithField("color", color,
			"Invalid color format",
			"Use 6-digit hex format like '#FF5733'")
	}
	for _, c := range hex {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return errors.NewUserErrorWithField("color", color,
				"Invalid hex character in color",
				"Use only hex digits (0-9, A-F)")
		}
	}
	return nil
}

// ColorIndex validates a palette color index. Zero means no color.
func ColorIndex(idx int) error {
	return InRange("color", idx, 0, MaxColorIndex)
}

// Quadrant validates a timesheet quadrant.
func Quadrant(q int) error {
	if !model.Quadrant(q).Valid() {
		return errors.Invalid(errors.ErrInvalidQuadrant, "quadrant", fmt.Sprint(q))
	}
	return nil
}

// Progress validates a project update progress percentage.
func Progress(p int) error {
	return InRange("progress", p, 0, 100)
}

// ServerLink validates the URL of a backend server.
func ServerLink(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("Server link cannot be empty", "Provide the server URL, e.g. https://erp.example.com")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("Server link too long", fmt.Sprintf("URLs must be %d characters or fewer", MaxURLLength))
	}
	if rawURL == model.LocalAccountLink {
		return errors.NewUserErrorWithField("server", rawURL,
			"Server link is reserved",
			"local:// belongs to the built-in local account")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.NewUserErrorWithField("server", rawURL,
			"Invalid URL format",
			"Provide a valid URL starting with https://")
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.NewUserErrorWithField("server", rawURL,
			"Invalid URL scheme",
			"Server links must use https:// or http://")
	}
	if parsed.Hostname() == "" {
		return errors.NewUserErrorWithField("server", rawURL,
			"Invalid URL: missing hostname",
			"Provide a valid URL like https://erp.example.com")
	}
	return nil
}

// Account validates the fields of a new account.
func Account(a *model.Account) error {
	if err := Name("account", a.Name); err != nil {
		return err
	}
	if err := ServerLink(a.ServerLink); err != nil {
		return err
	}
	if err := NonEmpty("database", a.DatabaseName); err != nil {
		return err
	}
	return NonEmpty("username", a.Username)
}

// NonEmpty validates that a string is not empty.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewUserError(
			field+" cannot be empty",
			"Provide a value for "+field)
	}
	return nil
}

// InRange validates that an integer is within a range.
func InRange(field string, value, min, max int) error {
	if value < min || value > max {
		return errors.NewUserErrorWithField(field, fmt.Sprint(value),
			"Value out of range",
			fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return nil
}
