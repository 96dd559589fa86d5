package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/order"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/review"
)

// ProductReviewLister serves the public review list of a product.
type ProductReviewLister interface {
	ListForProduct(ctx context.Context, productID string) ([]domain.Review, error)
}

type ReviewHandler struct {
	gate   *review.Gate
	lister ProductReviewLister
}

func NewReviewHandler(gate *review.Gate, lister ProductReviewLister) *ReviewHandler {
	return &ReviewHandler{gate: gate, lister: lister}
}

// ListForProduct is a read-only passthrough; no gating applies to display.
func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	reviews, err := h.lister.ListForProduct(r.Context(), productID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "remote_failure", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

type submitReviewRequestDTO struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req submitReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	err := h.gate.Submit(r.Context(), orderID, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrInvalidRating):
			respondError(w, http.StatusBadRequest, "invalid_rating", err.Error())
		case errors.Is(err, review.ErrOrderNotCompleted):
			respondError(w, http.StatusConflict, "order_not_completed", err.Error())
		case errors.Is(err, review.ErrProductNotInOrder):
			respondError(w, http.StatusConflict, "product_not_in_order", err.Error())
		case errors.Is(err, review.ErrAlreadyReviewed):
			respondError(w, http.StatusConflict, "already_reviewed", err.Error())
		case errors.Is(err, order.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "order_not_found", err.Error())
		case errors.Is(err, api.ErrUnauthorized):
			respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
		default:
			respondError(w, http.StatusBadGateway, "remote_failure", err.Error())
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "submitted"})
}
