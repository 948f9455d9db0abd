package postgres

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxIdentifierLength is PostgreSQL's NAMEDATALEN-1.
const MaxIdentifierLength = 63

// ErrInvalidIdentifier is returned for table names typed by the operator that
// are not plain lower-case identifiers.
var ErrInvalidIdentifier = errors.New("invalid identifier")

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateIdentifier accepts only unquoted-safe lower-case identifiers, so the
// name means the same thing to PostgreSQL and to pg_partman.
func ValidateIdentifier(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidIdentifier)
	case len(name) > MaxIdentifierLength:
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidIdentifier, name, MaxIdentifierLength)
	case !identPattern.MatchString(name):
		return fmt.Errorf("%w: %q must start with a lower-case letter or underscore and contain only lower-case letters, digits and underscores", ErrInvalidIdentifier, name)
	}
	return nil
}

// DeriveSequenceName maps a sequence following the <source>_<column>_seq
// convention onto the matching <dest>_<column>_seq name. ok is false when
// sequence does not follow the convention for source.
func DeriveSequenceName(source, dest, sequence string) (column, destSequence string, ok bool) {
	rest, found := strings.CutPrefix(sequence, source+"_")
	if !found {
		return "", "", false
	}
	column, found = strings.CutSuffix(rest, "_seq")
	if !found || column == "" {
		return "", "", false
	}
	return column, dest + "_" + column + "_seq", true
}
