package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rankdeck/rankdeck-server/internal/domain"
)

// cardSessionIndexKey builds the per-session card index key.
// Layout: idx:cards:session:<sessionID>:<cardID> -> "".
func cardSessionIndexKey(sessionID, cardID string) []byte {
	return []byte(cardsBySessionPrefix + sessionID + ":" + cardID)
}

// cardIDsForSession collects the ids of all cards indexed under a session
// inside an open transaction.
func cardIDsForSession(txn *badger.Txn, sessionID string) ([]string, error) {
	prefix := []byte(cardsBySessionPrefix + sessionID + ":")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().Key()
		ids = append(ids, string(key[len(prefix):]))
	}

	return ids, nil
}

// CreateCard persists a new card together with the updated session document
// in a single transaction. The caller appends the card's id to the session
// ledger before calling; committing both here means a stored card is never
// observable without its ledger entry.
func (s *Store) CreateCard(ctx context.Context, card *domain.Card, session *domain.RankingSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(cardPrefix + card.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrDuplicateCard
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check card key: %w", err)
		}

		if err := setInTxn(txn, key, card); err != nil {
			return fmt.Errorf("save card: %w", err)
		}

		if err := txn.Set(cardSessionIndexKey(card.SessionID, card.ID), []byte{}); err != nil {
			return fmt.Errorf("save card index: %w", err)
		}

		if err := setInTxn(txn, []byte(sessionPrefix+session.ID), session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		return nil
	})
}

// GetCard retrieves a card by ID.
func (s *Store) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var card domain.Card
	if err := s.get([]byte(cardPrefix+id), &card); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("get card: %w", err)
	}

	return &card, nil
}

// UpdateCard overwrites a card document.
func (s *Store) UpdateCard(ctx context.Context, card *domain.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(cardPrefix + card.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check card exists: %w", err)
	}
	if !exists {
		return ErrCardNotFound
	}

	return s.set(key, card)
}

// DeleteCard removes a card record and its index entry, and persists the
// session (whose ledger the caller has already updated) in the same
// transaction. Ledger removal and record deletion landing together avoids a
// window where a deleted card would be resurrected by read-side
// reconciliation as an unordered stray.
func (s *Store) DeleteCard(ctx context.Context, cardID string, session *domain.RankingSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := setInTxn(txn, []byte(sessionPrefix+session.ID), session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		if err := txn.Delete([]byte(cardPrefix + cardID)); err != nil {
			return fmt.Errorf("delete card: %w", err)
		}

		if err := txn.Delete(cardSessionIndexKey(session.ID, cardID)); err != nil {
			return fmt.Errorf("delete card index: %w", err)
		}

		return nil
	})
}

// ListCardsBySession returns all cards belonging to a session, in no
// particular order. Ordering is the session ledger's job.
func (s *Store) ListCardsBySession(ctx context.Context, sessionID string) ([]*domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ids, err = cardIDsForSession(txn, sessionID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list card ids: %w", err)
	}

	cards := make([]*domain.Card, 0, len(ids))
	for _, cardID := range ids {
		card, err := s.GetCard(ctx, cardID)
		if err != nil {
			if errors.Is(err, ErrCardNotFound) {
				// Index entry outlived its record; skip rather than fail the listing.
				continue
			}
			return nil, err
		}
		cards = append(cards, card)
	}

	return cards, nil
}
