package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rankdeck/rankdeck-server/internal/domain"
	apperrors "github.com/rankdeck/rankdeck-server/internal/errors"
	"github.com/rankdeck/rankdeck-server/internal/id"
	"github.com/rankdeck/rankdeck-server/internal/store"
)

// CardService orchestrates card-level operations. Every card mutation also
// touches the owning session: creation appends to the ledger, deletion
// removes from it, and both sides persist in one store transaction.
type CardService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCardService creates a new card service.
func NewCardService(store *store.Store, logger *slog.Logger) *CardService {
	return &CardService{
		store:  store,
		logger: logger,
	}
}

// CreateCard adds a card to the session identified by slug and appends it to
// the end of the ledger. Returns the new card and the ledger as persisted.
func (s *CardService) CreateCard(ctx context.Context, sessionSlug string, draft domain.CardDraft, callerToken string) (*domain.Card, []string, error) {
	session, err := s.resolveSessionBySlug(ctx, sessionSlug)
	if err != nil {
		return nil, nil, err
	}

	if !session.CanEdit(callerToken) {
		return nil, nil, apperrors.Unauthorized("Unauthorized")
	}

	cardID, err := id.Generate(id.PrefixCard)
	if err != nil {
		return nil, nil, fmt.Errorf("generate card ID: %w", err)
	}

	tags := draft.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now()
	card := &domain.Card{
		ID:          cardID,
		SessionID:   session.ID,
		Title:       draft.Title,
		Description: draft.Description,
		ImageURL:    draft.ImageURL,
		LinkURL:     draft.LinkURL,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	session.AppendCard(card.ID)
	session.UpdatedAt = now

	if err := s.store.CreateCard(ctx, card, session); err != nil {
		return nil, nil, fmt.Errorf("create card: %w", err)
	}

	s.logger.Info("card created",
		"card_id", card.ID,
		"session_id", session.ID,
		"position", len(session.CardOrder),
	)

	return card, session.CardOrder, nil
}

// UpdateCard applies a metadata patch to a card. Ownership is checked against
// the owning session; the ledger is untouched.
func (s *CardService) UpdateCard(ctx context.Context, cardID string, patch domain.CardPatch, callerToken string) (*domain.Card, error) {
	card, session, err := s.resolveCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if !session.CanEdit(callerToken) {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	if patch.Apply(card) {
		card.UpdatedAt = time.Now()
		if err := s.store.UpdateCard(ctx, card); err != nil {
			return nil, fmt.Errorf("update card: %w", err)
		}

		s.logger.Info("card updated", "card_id", card.ID, "session_id", session.ID)
	}

	return card, nil
}

// DeleteCard removes a card and its ledger entry in one transaction. Returns
// the ledger as persisted after the removal.
func (s *CardService) DeleteCard(ctx context.Context, cardID, callerToken string) ([]string, error) {
	card, session, err := s.resolveCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if !session.CanEdit(callerToken) {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	session.RemoveCard(card.ID)
	session.UpdatedAt = time.Now()

	if err := s.store.DeleteCard(ctx, card.ID, session); err != nil {
		return nil, fmt.Errorf("delete card: %w", err)
	}

	s.logger.Info("card deleted",
		"card_id", card.ID,
		"session_id", session.ID,
		"remaining", len(session.CardOrder),
	)

	return session.CardOrder, nil
}

// resolveCard fetches a card and its owning session, mapping store misses to
// wire-level not-found errors.
func (s *CardService) resolveCard(ctx context.Context, cardID string) (*domain.Card, *domain.RankingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		if apperrors.Is(err, store.ErrCardNotFound) {
			return nil, nil, apperrors.NotFound("Card not found")
		}
		return nil, nil, fmt.Errorf("get card: %w", err)
	}

	session, err := s.store.GetSession(ctx, card.SessionID)
	if err != nil {
		if apperrors.Is(err, store.ErrSessionNotFound) {
			return nil, nil, apperrors.NotFound("Session not found")
		}
		return nil, nil, fmt.Errorf("get card session: %w", err)
	}

	return card, session, nil
}

func (s *CardService) resolveSessionBySlug(ctx context.Context, sessionSlug string) (*domain.RankingSession, error) {
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
