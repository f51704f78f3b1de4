// Package membernum generates, normalizes and formats coop member numbers:
// 8-character codes over the uppercase alphanumeric alphabet.
package membernum

import (
	"crypto/rand"
	"strings"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Length is the canonical member number length.
	Length = 8
)

var randRead = rand.Read

// Generate returns one candidate member number. Candidates are drawn
// uniformly from the alphabet and are not guaranteed unique; uniqueness is
// the Allocator's job.
func Generate() string {
	buffer := make([]byte, Length)
	if _, err := randRead(buffer); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	out := make([]byte, Length)
	for i, b := range buffer {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out)
}

// Normalize converts a raw stored value into uppercase alphanumeric form,
// stripping every other character. It returns "" when nothing usable
// remains. Length validation is left to the caller.
func Normalize(raw string) string {
	var builder strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r >= 'a' && r <= 'z':
			builder.WriteRune(r - 'a' + 'A')
		}
	}
	return builder.String()
}

// IsCanonical reports whether the raw value normalizes to exactly the
// canonical length.
func IsCanonical(raw string) bool {
	return len(Normalize(raw)) == Length
}

// Format renders a member number for display, inserting a dash after the
// fourth character (ABCD1234 -> ABCD-1234). Values of four characters or
// fewer are returned as-is; values that normalize to nothing render empty.
func Format(raw string) string {
	normalized := Normalize(raw)
	if len(normalized) <= 4 {
		return normalized
	}
	return normalized[:4] + "-" + normalized[4:]
}
