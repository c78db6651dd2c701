package handlers

import (
	"net/http"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/pkg/response"
)

type paymentRequest struct {
	Method model.PaymentMethod `json:"method" validate:"required,oneof=cash card transfer"`
}

type assignRiderRequest struct {
	RiderID string `json:"riderId" validate:"required"`
}

// StaffQueues returns the orders waiting to be served and the ones waiting for payment.
func (h *Handler) StaffQueues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	serve, err := h.Orders.ServeQueue(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	payment, err := h.Orders.PaymentQueue(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, map[string]any{"serve": serve, "payment": payment})
}

func (h *Handler) StaffServe(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Serve(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

// StaffPayment records cash, card or transfer collection and completes the order.
func (h *Handler) StaffPayment(w http.ResponseWriter, r *http.Request) {
	var body paymentRequest
	if !h.decode(w, r, &body) {
		return
	}
	o, err := h.Orders.RecordPayment(r.Context(), actor(r), readPathString(r, "id"), body.Method)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

func (h *Handler) StaffConfirmQR(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.ConfirmQRPayment(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

func (h *Handler) StaffConfirmPayment(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.ConfirmStaffPayment(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

func (h *Handler) StaffAssignRider(w http.ResponseWriter, r *http.Request) {
	var body assignRiderRequest
	if !h.decode(w, r, &body) {
		return
	}
	ctx := r.Context()
	rider, err := h.Accounts.Get(ctx, body.RiderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if rider.Role != model.RoleRider {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "User is not a rider")
		return
	}
	o, err := h.Orders.AssignRider(ctx, actor(r), readPathString(r, "id"), rider.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

// StaffRiders lists riders for the assign dialog.
func (h *Handler) StaffRiders(w http.ResponseWriter, r *http.Request) {
	riders, err := h.Accounts.List(r.Context(), model.RoleRider)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, riders)
}

func (h *Handler) StaffStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.StaffStats(r.Context(), actor(r).Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, stats)
}
