// Package id generates and validates the opaque identifiers used across the store.
package id

import (
	"fmt"
	"regexp"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the entity types that get ids.
const (
	PrefixSession = "ses"
	PrefixCard    = "card"
)

// Matches "<prefix>-<21 chars of the default NanoID alphabet>".
var idPattern = regexp.MustCompile(`^[a-z]+-[A-Za-z0-9_-]{21}$`)

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "card-V1StGXR8_Z5jdHi6B-myT")
//
// NanoIDs are URL-friendly, compact (21 characters vs UUID's 36),
// and use a larger alphabet for better entropy per character.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	// Use default NanoID (21 characters, URL-safe alphabet)
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use this only when you're certain the system entropy is available,
// or when failure should crash the program (e.g., during seeding).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// IsValid reports whether s is a well-formed id for the given prefix.
// Malformed ids must be rejected at the request boundary before any
// store lookup is attempted.
func IsValid(prefix, s string) bool {
	if len(s) != len(prefix)+1+21 {
		return false
	}
	if s[:len(prefix)+1] != prefix+"-" {
		return false
	}
	return idPattern.MatchString(s)
}
