package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/voucher"
	"restaurant-order-service/pkg/response"
)

type cartItemRequest struct {
	MenuItemID string `json:"id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gte=0,lte=999"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"lte=999"`
}

type selectVoucherRequest struct {
	Code string `json:"code" validate:"max=40"`
}

func cartOrderType(r *http.Request) model.OrderType {
	t := model.OrderType(strings.TrimSpace(r.URL.Query().Get("type")))
	if !t.IsValid() {
		return model.OrderTypeDelivery
	}
	return t
}

// CartGet returns the cart with a quote for ?type= (delivery by default).
func (h *Handler) CartGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.Carts.Get(r.Context(), scope(r), cartOrderType(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, view)
}

// CartAdd adds one unit, or quantity units when given.
func (h *Handler) CartAdd(w http.ResponseWriter, r *http.Request) {
	var body cartItemRequest
	if !h.decode(w, r, &body) {
		return
	}
	qty := body.Quantity
	if qty == 0 {
		qty = 1
	}
	cart, err := h.Carts.Add(r.Context(), scope(r), body.MenuItemID, qty)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, cart)
}

// CartSetQuantity replaces a line's quantity, zero or less removes it.
func (h *Handler) CartSetQuantity(w http.ResponseWriter, r *http.Request) {
	var body cartQuantityRequest
	if !h.decode(w, r, &body) {
		return
	}
	cart, err := h.Carts.SetQuantity(r.Context(), scope(r), readPathString(r, "id"), body.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, cart)
}

func (h *Handler) CartRemove(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Carts.Remove(r.Context(), scope(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, cart)
}

func (h *Handler) CartClear(w http.ResponseWriter, r *http.Request) {
	if err := h.Carts.Clear(r.Context(), scope(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.SuccessMessage(w, http.StatusOK, "Cart cleared", nil)
}

func (h *Handler) FavoritesList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Carts.Favorites(r.Context(), scope(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, ids)
}

func (h *Handler) FavoriteToggle(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	on, err := h.Carts.ToggleFavorite(r.Context(), scope(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, map[string]any{"id": id, "favorite": on})
}

// VouchersApplicable lists vouchers usable for ?subtotal=, or for the caller's cart when
// the parameter is absent.
func (h *Handler) VouchersApplicable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var subtotal float64
	if raw := strings.TrimSpace(r.URL.Query().Get("subtotal")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "subtotal must be a positive number")
			return
		}
		subtotal = v
	} else {
		view, err := h.Carts.Get(ctx, scope(r), model.OrderTypeTakeaway)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		subtotal = voucher.CartSubtotal(view.Cart)
	}
	list, err := h.Vouchers.Applicable(ctx, subtotal)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	selected, err := h.Vouchers.Selected(ctx, scope(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, map[string]any{"subtotal": subtotal, "vouchers": list, "selected": selected})
}

// VoucherSelect picks the voucher used at checkout, an empty code clears it.
func (h *Handler) VoucherSelect(w http.ResponseWriter, r *http.Request) {
	var body selectVoucherRequest
	if !h.decode(w, r, &body) {
		return
	}
	v, err := h.Vouchers.Select(r.Context(), scope(r), body.Code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, v)
}

func (h *Handler) VoucherClearSelection(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Vouchers.Select(r.Context(), scope(r), ""); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.SuccessMessage(w, http.StatusOK, "Voucher selection cleared", nil)
}
