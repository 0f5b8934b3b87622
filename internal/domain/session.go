// Package domain contains the core entities: ranking sessions and their cards.
package domain

import (
	"errors"
	"slices"
	"time"
)

// Ledger validation errors returned by ReplaceOrder. The service layer maps
// these to the INVALID_ORDER / INVALID_CARD_ID wire codes.
var (
	// ErrOrderCardinalityMismatch is returned when a replacement order does
	// not contain exactly as many ids as the current ledger.
	ErrOrderCardinalityMismatch = errors.New("card order cardinality mismatch")
	// ErrUnknownCardInOrder is returned when a replacement order contains an
	// id that is not in the current ledger.
	ErrUnknownCardInOrder = errors.New("unknown card id in order")
)

// RankingSession is a named, shareable collection of cards with an explicit
// rank order. CardOrder is the authoritative ledger: position 0 is rank 1.
//
// OwnerToken is an anonymous capability, not an identity: an empty token
// means the session is unowned and anyone may mutate it. It is serialized as
// "ownerId" because clients compare their stored token against it to decide
// whether to show edit affordances.
type RankingSession struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OwnerToken  string    `json:"ownerId,omitempty"`
	CardOrder   []string  `json:"cardOrder"`
}

// CanEdit is the ownership guard: it reports whether a caller presenting
// token may mutate this session or its cards. Unowned sessions accept any
// caller, including one presenting no token at all.
func (s *RankingSession) CanEdit(token string) bool {
	return s.OwnerToken == "" || s.OwnerToken == token
}

// ContainsCard checks if a card ID is in the ledger.
func (s *RankingSession) ContainsCard(cardID string) bool {
	return slices.Contains(s.CardOrder, cardID)
}

// AppendCard adds a card ID to the end of the ledger if not already present.
func (s *RankingSession) AppendCard(cardID string) bool {
	if slices.Contains(s.CardOrder, cardID) {
		return false // Already present
	}
	s.CardOrder = append(s.CardOrder, cardID)
	return true
}

// RemoveCard removes a card ID from the ledger, keeping the relative order
// of the remaining entries.
func (s *RankingSession) RemoveCard(cardID string) bool {
	for i, id := range s.CardOrder {
		if id == cardID {
			s.CardOrder = append(s.CardOrder[:i], s.CardOrder[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceOrder replaces the whole ledger with newOrder after validating that
// newOrder is a permutation of the current ledger. Reordering may never
// smuggle in additions, deletions, or foreign ids: a cardinality difference
// yields ErrOrderCardinalityMismatch, a membership difference yields
// ErrUnknownCardInOrder. On success the ledger becomes exactly newOrder.
func (s *RankingSession) ReplaceOrder(newOrder []string) error {
	// The ledger holds each id at most once, so a raw length comparison also
	// rejects replacement orders with duplicated entries.
	if len(newOrder) != len(s.CardOrder) {
		return ErrOrderCardinalityMismatch
	}

	current := make(map[string]bool, len(s.CardOrder))
	for _, id := range s.CardOrder {
		current[id] = true
	}

	next := make(map[string]bool, len(newOrder))
	for _, id := range newOrder {
		next[id] = true
	}

	if len(next) != len(current) {
		return ErrOrderCardinalityMismatch
	}
	for id := range next {
		if !current[id] {
			return ErrUnknownCardInOrder
		}
	}

	s.CardOrder = slices.Clone(newOrder)
	return nil
}
