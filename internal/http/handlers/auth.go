package handlers

import (
	"net/http"
	"strings"

	"restaurant-order-service/internal/auth"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/tracking"
	"restaurant-order-service/pkg/response"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Password   string `json:"password" validate:"required"`
}

type demoLoginRequest struct {
	Role model.Role `json:"role" validate:"required,oneof=customer staff chef rider admin"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body auth.RegisterInput
	if !h.decode(w, r, &body) {
		return
	}
	session, err := h.Accounts.Register(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": session})
}

// Login accepts a username, email or phone number as the identifier.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !h.decode(w, r, &body) {
		return
	}
	identifier := strings.TrimSpace(body.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(body.Username)
	}
	if identifier == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "identifier is required")
		return
	}
	session, err := h.Accounts.Login(r.Context(), identifier, body.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, session)
}

func (h *Handler) DemoLogin(w http.ResponseWriter, r *http.Request) {
	var body demoLoginRequest
	if !h.decode(w, r, &body) {
		return
	}
	session, err := h.Accounts.DemoLogin(r.Context(), body.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, session)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Accounts.Get(r.Context(), actor(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, u)
}

// MyOrders lists the caller's own orders, newest first.
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.CustomerOrders(r.Context(), actor(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, orders)
}

// TrackingToken issues the public tracking link token of an order the caller may see.
func (h *Handler) TrackingToken(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.GetFor(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, map[string]any{
		"orderId": o.ID,
		"token":   tracking.Token(h.Config.TrackingSecret, o.ID),
	})
}
