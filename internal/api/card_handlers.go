package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rankdeck/rankdeck-server/internal/domain"
	apperrors "github.com/rankdeck/rankdeck-server/internal/errors"
	"github.com/rankdeck/rankdeck-server/internal/http/response"
	"github.com/rankdeck/rankdeck-server/internal/id"
)

// CreateCardRequest represents the request body for adding a card to a session.
type CreateCardRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"omitempty,max=1000"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,url"`
	LinkURL     string   `json:"linkUrl" validate:"omitempty,url"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateCardRequest represents the request body for updating card metadata.
// Absent fields are left untouched; empty strings clear, except the title,
// which must stay non-empty.
type UpdateCardRequest struct {
	Title       *string   `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,url"`
	LinkURL     *string   `json:"linkUrl" validate:"omitempty,url"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// CreateCardResponse is a created card together with the updated session ledger.
type CreateCardResponse struct {
	Card      *domain.Card `json:"card"`
	CardOrder []string     `json:"cardOrder"`
}

// CardResponse wraps a single card.
type CardResponse struct {
	Card *domain.Card `json:"card"`
}

// DeleteCardResponse confirms a card deletion and carries the updated ledger.
type DeleteCardResponse struct {
	Message   string   `json:"message"`
	CardOrder []string `json:"cardOrder"`
}

// handleCreateCard adds a card to a session and appends it to the ledger.
func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	sessionSlug, ok := s.requireSlug(w, r)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", apperrors.CodeValidation, s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, apperrors.CodeCreate, s.logger)
		return
	}

	card, order, err := s.cardService.CreateCard(r.Context(), sessionSlug, domain.CardDraft{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		LinkURL:     req.LinkURL,
		Tags:        req.Tags,
	}, ownerToken(r))
	if err != nil {
		response.HandleError(w, err, apperrors.CodeCreate, s.logger)
		return
	}

	response.Created(w, CreateCardResponse{
		Card:      card,
		CardOrder: order,
	}, s.logger)
}

// handleUpdateCard updates card metadata.
func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := s.requireCardID(w, r)
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", apperrors.CodeValidation, s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, apperrors.CodeUpdate, s.logger)
		return
	}

	card, err := s.cardService.UpdateCard(r.Context(), cardID, domain.CardPatch{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		LinkURL:     req.LinkURL,
		Tags:        req.Tags,
	}, ownerToken(r))
	if err != nil {
		response.HandleError(w, err, apperrors.CodeUpdate, s.logger)
		return
	}

	response.Success(w, CardResponse{Card: card}, s.logger)
}

// handleDeleteCard removes a card from its session and the ledger.
func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := s.requireCardID(w, r)
	if !ok {
		return
	}

	order, err := s.cardService.DeleteCard(r.Context(), cardID, ownerToken(r))
	if err != nil {
		response.HandleError(w, err, apperrors.CodeDelete, s.logger)
		return
	}

	response.Success(w, DeleteCardResponse{
		Message:   "Card deleted successfully",
		CardOrder: order,
	}, s.logger)
}

// requireCardID extracts and validates the card id path parameter. A
// malformed id can never resolve, so it is rejected before any lookup.
func (s *Server) requireCardID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cardID := chi.URLParam(r, "id")
	if !id.IsValid(id.PrefixCard, cardID) {
		response.Error(w, http.StatusBadRequest, "Invalid card ID", apperrors.CodeInvalidID, s.logger)
		return "", false
	}
	return cardID, true
}
