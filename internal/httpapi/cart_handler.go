package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/cart"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

type CartHandler struct {
	store *cart.Store
}

func NewCartHandler(store *cart.Store) *CartHandler {
	return &CartHandler{store: store}
}

type addItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type setQuantityRequestDTO struct {
	Quantity int  `json:"quantity"`
	Confirm  bool `json:"confirm"`
}

type cartResponseDTO struct {
	Lines  []domain.CartLine `json:"lines"`
	Amount int64             `json:"amount"`
	Weight int               `json:"weight"`
	Count  int               `json:"count"`
}

func (h *CartHandler) snapshot() cartResponseDTO {
	return cartResponseDTO{
		Lines:  h.store.Lines(),
		Amount: h.store.Amount(),
		Weight: h.store.Weight(),
		Count:  h.store.Count(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snapshot())
}

// Refresh adopts the backend's cart snapshot, replacing the local mirror.
func (h *CartHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Sync(r.Context()); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.snapshot())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.store.SetQuantity(r.Context(), req.ProductID, req.Size, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.snapshot())
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	size := chi.URLParam(r, "size")

	var req setQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	// Dropping a line through quantity zero is a two-phase action: the
	// remote delete only runs once the caller has confirmed.
	if req.Quantity == 0 && !req.Confirm {
		respondError(w, http.StatusConflict, "confirm_required", cart.ErrConfirmRemoval.Error())
		return
	}

	if err := h.store.SetQuantity(r.Context(), productID, size, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.snapshot())
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	size := chi.URLParam(r, "size")

	if err := h.store.Decrement(r.Context(), productID, size); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.snapshot())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	size := chi.URLParam(r, "size")

	if err := h.store.Remove(r.Context(), productID, size); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.snapshot())
}

func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrConfirmRemoval):
		respondError(w, http.StatusConflict, "confirm_required", err.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "line_not_found", err.Error())
	case errors.Is(err, cart.ErrMissingSize), errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, api.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	default:
		respondError(w, http.StatusBadGateway, "remote_failure", err.Error())
	}
}
