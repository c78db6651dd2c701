package handlers

import (
	"net/http"

	"restaurant-order-service/internal/order"
	"restaurant-order-service/pkg/response"
)

type riderLocationRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// RiderJobs lists ready delivery and takeaway orders nobody has accepted.
func (h *Handler) RiderJobs(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.AvailableJobs(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, orders)
}

// RiderCurrent returns the caller's active delivery, null when idle.
func (h *Handler) RiderCurrent(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.CurrentDelivery(r.Context(), actor(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if o == nil {
		response.Success(w, nil)
		return
	}
	response.Success(w, map[string]any{"order": o, "mapsLink": order.MapsLink(o)})
}

func (h *Handler) RiderAccept(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.AcceptDelivery(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, map[string]any{"order": o, "mapsLink": order.MapsLink(o)})
}

func (h *Handler) RiderComplete(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.CompleteDelivery(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

func (h *Handler) RiderLocation(w http.ResponseWriter, r *http.Request) {
	var body riderLocationRequest
	if !h.decode(w, r, &body) {
		return
	}
	o, err := h.Orders.UpdateRiderLocation(r.Context(), actor(r), readPathString(r, "id"), body.Lat, body.Lng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

func (h *Handler) RiderHistory(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.DeliveryHistory(r.Context(), actor(r).UserID, readQueryInt(r, "limit", 50))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, orders)
}

func (h *Handler) RiderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.RiderStats(r.Context(), actor(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, stats)
}
