// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Serial number shape constants
const (
	// SerialNumberMinDigits is the minimum width of the numeric part; wider numbers are not truncated
	SerialNumberMinDigits = 5

	// PrefixMaxLength is the maximum number of characters in a prefix
	PrefixMaxLength = 5

	// PrefixSuggestionMaxAttempts bounds the numbered-variant search in prefix suggestion
	PrefixSuggestionMaxAttempts = 10

	// prefixBaseLength is the length of a derived suggestion before any numeral is appended
	prefixBaseLength = 3

	// fallbackPrefixBase is used when a category name has no letters at all
	fallbackPrefixBase = "TSK"
)

var (
	prefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,5}$`)

	// Five digits exactly, or six and more without a leading zero. Numbers above 99999 are
	// emitted by the generator and stay valid; zero-padded forms wider than five are not canonical.
	serialNumberPattern = regexp.MustCompile(`^[A-Z0-9]{1,5}-(\d{5}|[1-9]\d{5,})$`)
)

// SerialNumber is a parsed task serial number
type SerialNumber struct {
	Prefix string `json:"prefix"`
	Number uint64 `json:"number"`
}

// String renders the serial number in PREFIX-NNNNN form
func (s SerialNumber) String() string {
	return FormatSerialNumber(s.Prefix, s.Number)
}

// NormalizePrefix trims surrounding whitespace and uppercases a prefix candidate
func NormalizePrefix(prefix string) string {
	return strings.ToUpper(strings.TrimSpace(prefix))
}

// IsValidPrefix reports whether prefix already is in normalized 1-5 [A-Z0-9] form
func IsValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}

// FormatSerialNumber zero-pads number to at least five digits and joins it to prefix
func FormatSerialNumber(prefix string, number uint64) string {
	return fmt.Sprintf("%s-%0*d", prefix, SerialNumberMinDigits, number)
}

// ValidateSerialNumber reports whether serial has the PREFIX-NNNNN shape
func ValidateSerialNumber(serial string) bool {
	return serialNumberPattern.MatchString(serial)
}

// ParseSerialNumber splits a serial number into prefix and number.
// ok is false when the serial does not validate or the number overflows uint64.
func ParseSerialNumber(serial string) (sn SerialNumber, ok bool) {
	if !ValidateSerialNumber(serial) {
		return SerialNumber{}, false
	}

	prefix, digits, found := strings.Cut(serial, "-")
	if !found {
		return SerialNumber{}, false
	}

	number, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return SerialNumber{}, false
	}

	return SerialNumber{Prefix: prefix, Number: number}, true
}

// DerivePrefixBase builds the base prefix suggestion for a category name.
// Non-letters are dropped; a single word yields its first three letters, several words yield
// their initials truncated to three. Names without letters fall back to a fixed base.
func DerivePrefixBase(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, name)

	words := strings.Fields(cleaned)
	switch len(words) {
	case 0:
		return fallbackPrefixBase
	case 1:
		word := strings.ToUpper(words[0])
		if len(word) > prefixBaseLength {
			word = word[:prefixBaseLength]
		}
		return word
	}

	var initials strings.Builder
	for _, w := range words {
		if initials.Len() == prefixBaseLength {
			break
		}
		initials.WriteByte(w[0])
	}
	return strings.ToUpper(initials.String())
}
