package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/cart"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/order"
)

// CheckoutHandler turns the current cart into a backend order. Shipping
// cost comes quoted from the external shipping-rate service; this core
// only adds it to the cart amount.
type CheckoutHandler struct {
	store   *cart.Store
	orders  *order.Repository
	catalog domain.Catalog
}

func NewCheckoutHandler(store *cart.Store, orders *order.Repository, catalog domain.Catalog) *CheckoutHandler {
	return &CheckoutHandler{store: store, orders: orders, catalog: catalog}
}

type checkoutRequestDTO struct {
	ShippingCost int64 `json:"shipping_cost"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ShippingCost < 0 {
		respondError(w, http.StatusBadRequest, "invalid_shipping_cost", "shipping cost must not be negative")
		return
	}

	lines := h.store.Lines()
	if len(lines) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty, nothing to checkout")
		return
	}

	items := h.freezeItems(lines)
	if len(items) == 0 {
		respondError(w, http.StatusConflict, "stale_cart", "no cart line resolves against the catalog")
		return
	}

	created, err := h.orders.Create(r.Context(), order.CheckoutInput{
		Items:        items,
		Amount:       h.store.Amount(),
		ShippingCost: req.ShippingCost,
	})
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, "remote_failure", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// freezeItems snapshots the cart lines into order items. Lines that no
// longer resolve against the catalog are skipped, mirroring how the cart
// totals treat stale references.
func (h *CheckoutHandler) freezeItems(lines []domain.CartLine) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		opt, ok := h.catalog.Resolve(line.ProductID, line.Size)
		if !ok {
			continue
		}
		info, _ := h.catalog.Product(line.ProductID)
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: info.Name,
			Size:        line.Size,
			Quantity:    line.Quantity,
			UnitPrice:   opt.UnitPrice,
			UnitWeight:  opt.UnitWeight,
			ImageURL:    info.ImageURL,
		})
	}
	return items
}
