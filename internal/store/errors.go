package store

import "errors"

// Sentinel errors returned by store lookups and writes.
var (
	// ErrSessionNotFound is returned when a session is not found in the store.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCardNotFound is returned when a card is not found in the store.
	ErrCardNotFound = errors.New("card not found")
	// ErrDuplicateSession is returned when trying to create a session whose id already exists.
	ErrDuplicateSession = errors.New("session already exists")
	// ErrDuplicateCard is returned when trying to create a card whose id already exists.
	ErrDuplicateCard = errors.New("card already exists")
	// ErrDuplicateSlug is returned when a session's slug is already taken.
	// The service retries slug generation a bounded number of times on this.
	ErrDuplicateSlug = errors.New("slug already exists")
)
