package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/rankdeck/rankdeck-server/internal/domain"
)

// CreateSession creates a new ranking session and claims its slug.
// Returns ErrDuplicateSlug if the slug is already taken, so callers can
// regenerate and retry.
func (s *Store) CreateSession(ctx context.Context, session *domain.RankingSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(sessionPrefix + session.ID)
	slugKey := []byte(sessionBySlugPrefix + session.Slug)

	return s.db.Update(func(txn *badger.Txn) error {
		// The slug index is the uniqueness gate.
		_, err := txn.Get(slugKey)
		if err == nil {
			return ErrDuplicateSlug
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check slug index: %w", err)
		}

		_, err = txn.Get(key)
		if err == nil {
			return ErrDuplicateSession
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check session key: %w", err)
		}

		if err := setInTxn(txn, key, session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		return txn.Set(slugKey, []byte(session.ID))
	})
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.RankingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session domain.RankingSession
	if err := s.get([]byte(sessionPrefix+id), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &session, nil
}

// GetSessionBySlug retrieves a session by its public slug via the slug index.
func (s *Store) GetSessionBySlug(ctx context.Context, slug string) (*domain.RankingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slugKey := []byte(sessionBySlugPrefix + slug)

	var sessionID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slugKey)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("lookup session by slug: %w", err)
	}

	return s.GetSession(ctx, sessionID)
}

// UpdateSession overwrites a session document in a single write. The whole
// record, ledger included, lands all-or-nothing; the last writer wins.
func (s *Store) UpdateSession(ctx context.Context, session *domain.RankingSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(sessionPrefix + session.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check session exists: %w", err)
	}
	if !exists {
		return ErrSessionNotFound
	}

	return s.set(key, session)
}

// ListRecentSessions returns up to limit sessions, newest UpdatedAt first.
func (s *Store) ListRecentSessions(ctx context.Context, limit int) ([]*domain.RankingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sessions []*domain.RankingSession

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var session domain.RankingSession
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			})
			if err != nil {
				return fmt.Errorf("unmarshal session: %w", err)
			}
			sessions = append(sessions, &session)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	slices.SortFunc(sessions, func(a, b *domain.RankingSession) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	return sessions, nil
}

// DeleteSessionCascade deletes a session, its slug index, and every child
// card (records and index entries) in one transaction, so no card ever
// outlives its parent in the persisted store.
func (s *Store) DeleteSessionCascade(ctx context.Context, session *domain.RankingSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		cardIDs, err := cardIDsForSession(txn, session.ID)
		if err != nil {
			return err
		}

		for _, cardID := range cardIDs {
			if err := txn.Delete([]byte(cardPrefix + cardID)); err != nil {
				return fmt.Errorf("delete card %s: %w", cardID, err)
			}
			if err := txn.Delete(cardSessionIndexKey(session.ID, cardID)); err != nil {
				return fmt.Errorf("delete card index %s: %w", cardID, err)
			}
		}

		if err := txn.Delete([]byte(sessionBySlugPrefix + session.Slug)); err != nil {
			return fmt.Errorf("delete slug index: %w", err)
		}

		if err := txn.Delete([]byte(sessionPrefix + session.ID)); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}

		return nil
	})
}
