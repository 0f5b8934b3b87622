// Package service provides the business logic layer for ranking sessions and
// their cards. Services are the only components that mutate a session's card
// set and its order ledger in the same logical operation; every mutation
// resolves the resource first, then checks ownership, then writes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rankdeck/rankdeck-server/internal/domain"
	apperrors "github.com/rankdeck/rankdeck-server/internal/errors"
	"github.com/rankdeck/rankdeck-server/internal/id"
	"github.com/rankdeck/rankdeck-server/internal/slug"
	"github.com/rankdeck/rankdeck-server/internal/store"
)

const (
	// slugMaxAttempts bounds slug regeneration on collision. Exhausting it
	// points at broken randomness, not bad luck, so the caller gets a
	// server error instead of more retries.
	slugMaxAttempts = 5

	// recentSessionsLimit caps the homepage listing.
	recentSessionsLimit = 20
)

// SessionService orchestrates session-level operations.
type SessionService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(store *store.Store, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:  store,
		logger: logger,
	}
}

// CreateSession creates a session with an empty ledger and a freshly
// generated unique slug. An empty ownerToken leaves the session unowned.
func (s *SessionService) CreateSession(ctx context.Context, title, description, ownerToken string) (*domain.RankingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.RankingSession{
		ID:          sessionID,
		Title:       title,
		Description: description,
		OwnerToken:  ownerToken,
		CardOrder:   []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := range slugMaxAttempts {
		candidate, err := slug.Generate(title)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}

		session.Slug = candidate
		err = s.store.CreateSession(ctx, session)
		if err == nil {
			s.logger.Info("session created",
				"session_id", session.ID,
				"slug", session.Slug,
				"owned", ownerToken != "",
			)
			return session, nil
		}
		if !apperrors.Is(err, store.ErrDuplicateSlug) {
			return nil, fmt.Errorf("create session: %w", err)
		}

		s.logger.Warn("slug collision, regenerating",
			"slug", candidate,
			"attempt", attempt+1,
		)
	}

	return nil, apperrors.ErrSlugGeneration
}

// ListRecent returns the most recently updated sessions, newest first.
func (s *SessionService) ListRecent(ctx context.Context) ([]*domain.RankingSession, error) {
	sessions, err := s.store.ListRecentSessions(ctx, recentSessionsLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	return sessions, nil
}

// GetSessionView resolves a session by slug and returns it together with its
// cards in display order. The ledger and the card set are reconciled on
// every read: dead ledger entries are dropped, stray cards appended last.
func (s *SessionService) GetSessionView(ctx context.Context, sessionSlug string) (*domain.RankingSession, []*domain.Card, error) {
	session, err := s.resolveBySlug(ctx, sessionSlug)
	if err != nil {
		return nil, nil, err
	}

	cards, err := s.store.ListCardsBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list session cards: %w", err)
	}

	return session, domain.ReconcileOrder(session.CardOrder, cards), nil
}

// UpdateSession applies a metadata patch to the session identified by slug.
func (s *SessionService) UpdateSession(ctx context.Context, sessionSlug string, patch domain.SessionPatch, callerToken string) (*domain.RankingSession, error) {
	session, err := s.resolveBySlug(ctx, sessionSlug)
	if err != nil {
		return nil, err
	}

	if !session.CanEdit(callerToken) {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	if patch.Apply(session) {
		session.UpdatedAt = time.Now()
		if err := s.store.UpdateSession(ctx, session); err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}

		s.logger.Info("session updated", "session_id", session.ID, "slug", session.Slug)
	}

	return session, nil
}

// DeleteSession removes a session and all of its cards. Cards are deleted in
// the same transaction as the session record, so no card outlives its parent.
func (s *SessionService) DeleteSession(ctx context.Context, sessionSlug, callerToken string) error {
	session, err := s.resolveBySlug(ctx, sessionSlug)
	if err != nil {
		return err
	}

	if !session.CanEdit(callerToken) {
		return apperrors.Unauthorized("Unauthorized")
	}

	if err := s.store.DeleteSessionCascade(ctx, session); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("session deleted",
		"session_id", session.ID,
		"slug", session.Slug,
		"cards", len(session.CardOrder),
	)

	return nil
}

// Reorder replaces the session's whole ledger with newOrder. The replacement
// must be a permutation of the current ledger; the full target sequence is
// required every time. Returns the ledger as persisted.
func (s *SessionService) Reorder(ctx context.Context, sessionSlug string, newOrder []string, callerToken string) ([]string, error) {
	session, err := s.resolveBySlug(ctx, sessionSlug)
	if err != nil {
		return nil, err
	}

	if !session.CanEdit(callerToken) {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	if err := session.ReplaceOrder(newOrder); err != nil {
		switch {
		case apperrors.Is(err, domain.ErrOrderCardinalityMismatch):
			return nil, apperrors.InvalidOrder("Card order mismatch")
		case apperrors.Is(err, domain.ErrUnknownCardInOrder):
			return nil, apperrors.InvalidCardID("Invalid card ID in order")
		default:
			return nil, fmt.Errorf("replace order: %w", err)
		}
	}

	session.UpdatedAt = time.Now()
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.logger.Info("session reordered", "session_id", session.ID, "cards", len(newOrder))

	return session.CardOrder, nil
}

// resolveBySlug fetches a session by slug, mapping store misses to the
// wire-level not-found error.
func (s *SessionService) resolveBySlug(ctx context.Context, sessionSlug string) (*domain.RankingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := s.store.GetSessionBySlug(ctx, sessionSlug)
	if err != nil {
		if apperrors.Is(err, store.ErrSessionNotFound) {
			return nil, apperrors.NotFound("Session not found")
		}
		return nil, fmt.Errorf("get session by slug: %w", err)
	}

	return session, nil
}
