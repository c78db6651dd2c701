package handlers

import (
	"net/http"

	"restaurant-order-service/pkg/response"
)

// KitchenQueue lists pending and preparing orders, oldest first.
func (h *Handler) KitchenQueue(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.KitchenQueue(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, orders)
}

func (h *Handler) KitchenStart(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.StartCooking(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

func (h *Handler) KitchenFinish(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.FinishCooking(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

func (h *Handler) KitchenStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.ChefStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, stats)
}
