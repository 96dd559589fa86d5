package httpapi

import (
	"errors"
	"net/http"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/order"
)

type OrdersHandler struct {
	orders *order.Repository
}

func NewOrdersHandler(orders *order.Repository) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, "remote_failure", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}
