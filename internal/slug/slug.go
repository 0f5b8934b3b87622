// Package slug produces the public, shareable identifiers for ranking sessions.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/unicode/norm"
)

// Suffix alphabet and length. 36^6 is around 2e9, enough that five
// generation attempts exhausting without a free slug indicates broken
// randomness rather than bad luck.
const (
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 6
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
	// Matches a well-formed slug: lowercase alphanumeric runs joined by single hyphens.
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify converts a string to a URL-safe slug.
// "Best Movies" -> "best-movies".
// "Café Olé!" -> "cafe-ole".
func Slugify(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	// Lowercase.
	s = strings.ToLower(s)

	// Replace non-alphanumeric with hyphens.
	s = nonAlphanumeric.ReplaceAllString(s, "-")

	// Collapse multiple hyphens.
	s = multipleHyphens.ReplaceAllString(s, "-")

	// Trim leading/trailing hyphens.
	s = strings.Trim(s, "-")

	return s
}

// Generate builds a session slug from a title: "<slugified-title>-<random6>".
// Uniqueness is not checked here; the caller verifies against the store and
// retries with a fresh suffix on collision.
func Generate(title string) (string, error) {
	suffix, err := gonanoid.Generate(suffixAlphabet, suffixLength)
	if err != nil {
		return "", fmt.Errorf("generate slug suffix: %w", err)
	}

	base := Slugify(title)
	if base == "" {
		// Title slugified to nothing (all punctuation/non-ASCII); the
		// random suffix alone still identifies the session.
		return suffix, nil
	}

	return base + "-" + suffix, nil
}

// IsValid reports whether s is a well-formed slug.
func IsValid(s string) bool {
	return slugPattern.MatchString(s)
}
