package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rankdeck/rankdeck-server/internal/domain"
	apperrors "github.com/rankdeck/rankdeck-server/internal/errors"
	"github.com/rankdeck/rankdeck-server/internal/http/response"
	"github.com/rankdeck/rankdeck-server/internal/id"
	"github.com/rankdeck/rankdeck-server/internal/slug"
)

// CreateSessionRequest represents the request body for creating a session.
type CreateSessionRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// UpdateSessionRequest represents the request body for updating session
// metadata. Absent fields are left untouched; an empty description clears,
// but the title must stay non-empty.
type UpdateSessionRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// ReorderRequest represents the request body for replacing the card order.
// The full target order is required; partial moves are not supported.
type ReorderRequest struct {
	CardOrder []string `json:"cardOrder"`
}

// SessionsResponse wraps the recent session listing.
type SessionsResponse struct {
	Sessions []*domain.RankingSession `json:"sessions"`
}

// SessionResponse wraps a single session.
type SessionResponse struct {
	Session *domain.RankingSession `json:"session"`
}

// SessionViewResponse is a session with its cards resolved in display order.
type SessionViewResponse struct {
	Session *domain.RankingSession `json:"session"`
	Cards   []*domain.Card         `json:"cards"`
}

// ReorderResponse carries the ledger as persisted after a reorder.
type ReorderResponse struct {
	CardOrder []string `json:"cardOrder"`
}

// MessageResponse confirms an operation with a human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// handleListSessions returns the most recently updated sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessionService.ListRecent(r.Context())
	if err != nil {
		s.logger.Error("Failed to list sessions", "error", err)
		response.HandleError(w, err, apperrors.CodeFetch, s.logger)
		return
	}

	response.Success(w, SessionsResponse{Sessions: sessions}, s.logger)
}

// handleCreateSession creates a new ranking session. The x-owner-token header,
// if present, becomes the session's owner capability.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", apperrors.CodeValidation, s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, apperrors.CodeCreate, s.logger)
		return
	}

	session, err := s.sessionService.CreateSession(r.Context(), req.Title, req.Description, ownerToken(r))
	if err != nil {
		s.logger.Error("Failed to create session", "error", err)
		response.HandleError(w, err, apperrors.CodeCreate, s.logger)
		return
	}

	response.Created(w, SessionResponse{Session: session}, s.logger)
}

// handleGetSession returns a session and its cards in display order.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionSlug, ok := s.requireSlug(w, r)
	if !ok {
		return
	}

	session, cards, err := s.sessionService.GetSessionView(r.Context(), sessionSlug)
	if err != nil {
		response.HandleError(w, err, apperrors.CodeFetch, s.logger)
		return
	}

	response.Success(w, SessionViewResponse{
		Session: session,
		Cards:   cards,
	}, s.logger)
}

// handleUpdateSession updates session metadata.
func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionSlug, ok := s.requireSlug(w, r)
	if !ok {
		return
	}

	var req UpdateSessionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", apperrors.CodeValidation, s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, apperrors.CodeUpdate, s.logger)
		return
	}

	session, err := s.sessionService.UpdateSession(r.Context(), sessionSlug, domain.SessionPatch{
		Title:       req.Title,
		Description: req.Description,
	}, ownerToken(r))
	if err != nil {
		response.HandleError(w, err, apperrors.CodeUpdate, s.logger)
		return
	}

	response.Success(w, SessionResponse{Session: session}, s.logger)
}

// handleDeleteSession deletes a session and all of its cards.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionSlug, ok := s.requireSlug(w, r)
	if !ok {
		return
	}

	if err := s.sessionService.DeleteSession(r.Context(), sessionSlug, ownerToken(r)); err != nil {
		response.HandleError(w, err, apperrors.CodeDelete, s.logger)
		return
	}

	response.Success(w, MessageResponse{Message: "Session deleted successfully"}, s.logger)
}

// handleReorderSession replaces the session's card order with the submitted
// permutation.
func (s *Server) handleReorderSession(w http.ResponseWriter, r *http.Request) {
	sessionSlug, ok := s.requireSlug(w, r)
	if !ok {
		return
	}

	var req ReorderRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", apperrors.CodeValidation, s.logger)
		return
	}

	if req.CardOrder == nil {
		response.Error(w, http.StatusBadRequest, "cardOrder is required", apperrors.CodeValidation, s.logger)
		return
	}

	// Reject malformed ids before touching the store.
	for _, cardID := range req.CardOrder {
		if !id.IsValid(id.PrefixCard, cardID) {
			response.Error(w, http.StatusBadRequest, "Invalid card ID in order", apperrors.CodeInvalidCardID, s.logger)
			return
		}
	}

	order, err := s.sessionService.Reorder(r.Context(), sessionSlug, req.CardOrder, ownerToken(r))
	if err != nil {
		response.HandleError(w, err, apperrors.CodeUpdate, s.logger)
		return
	}

	response.Success(w, ReorderResponse{CardOrder: order}, s.logger)
}

// requireSlug extracts and validates the slug path parameter. A malformed
// slug can never resolve, so it is rejected before any lookup.
func (s *Server) requireSlug(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionSlug := chi.URLParam(r, "slug")
	if !slug.IsValid(sessionSlug) {
		response.Error(w, http.StatusBadRequest, "Invalid session slug", apperrors.CodeValidation, s.logger)
		return "", false
	}
	return sessionSlug, true
}
