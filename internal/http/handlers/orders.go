package handlers

import (
	"net/http"
	"strings"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/order"
	"restaurant-order-service/internal/receipt"
	"restaurant-order-service/internal/store"
	"restaurant-order-service/internal/tracking"
	"restaurant-order-service/pkg/response"
)

type checkoutItem struct {
	MenuItemID string `json:"id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gte=1,lte=999"`
}

type checkoutRequest struct {
	OrderType     model.OrderType     `json:"orderType" validate:"required,oneof=delivery takeaway dine-in"`
	Address       string              `json:"address" validate:"max=500"`
	Lat           *float64            `json:"lat" validate:"omitempty,latitude"`
	Lng           *float64            `json:"lng" validate:"omitempty,longitude"`
	TableNumber   string              `json:"tableNumber" validate:"max=20"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=qr cod staff"`
	VoucherCode   string              `json:"voucherCode" validate:"max=40"`
	Items         []checkoutItem      `json:"items" validate:"omitempty,max=100,dive"`
}

// OrderCreate checks out the caller's cart, or the explicit items of the body.
func (h *Handler) OrderCreate(w http.ResponseWriter, r *http.Request) {
	var body checkoutRequest
	if !h.decode(w, r, &body) {
		return
	}
	req := order.CheckoutRequest{
		Actor:          actor(r),
		Scope:          scope(r),
		OrderType:      body.OrderType,
		Address:        body.Address,
		Lat:            body.Lat,
		Lng:            body.Lng,
		TableNumber:    body.TableNumber,
		PaymentMethod:  body.PaymentMethod,
		VoucherCode:    body.VoucherCode,
		IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	}
	for _, item := range body.Items {
		req.Items = append(req.Items, order.ItemRequest{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
	}

	o, err := h.Orders.Checkout(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Order placed",
		"data":    o,
	})
}

func (h *Handler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.GetFor(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

// OrderList returns the caller's orders for customers and every order for other roles,
// filtered by ?status=a,b and ?type=.
func (h *Handler) OrderList(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	f := store.OrderFilter{Limit: readQueryInt(r, "limit", 0)}
	for _, s := range strings.Split(r.URL.Query().Get("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			f.Statuses = append(f.Statuses, model.OrderStatus(s))
		}
	}
	if t := model.OrderType(strings.TrimSpace(r.URL.Query().Get("type"))); t.IsValid() {
		f.Types = []model.OrderType{t}
	}
	if a.Role == model.RoleCustomer {
		f.CustomerID = a.UserID
	}
	orders, err := h.Orders.List(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, orders)
}

// OrderReorder copies a past order into the cart and reports the lines it had to skip.
func (h *Handler) OrderReorder(w http.ResponseWriter, r *http.Request) {
	cart, skipped, err := h.Orders.Reorder(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if skipped == nil {
		skipped = []string{}
	}
	response.Success(w, map[string]any{"cart": cart, "skipped": skipped})
}

func (h *Handler) OrderReceipt(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.GetFor(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	pdf, err := receipt.Order(o, h.receiptHeader(), h.Reports.Location())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Bytes(w, "application/pdf", receipt.Filename(o), pdf)
}

// OrderCancel is admin only, and allowed while the order is pending or preparing.
func (h *Handler) OrderCancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Cancel(r.Context(), actor(r), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, o)
}

func (h *Handler) receiptHeader() receipt.Header {
	return receipt.Header{Name: h.Config.RestaurantName, Phone: h.Config.RestaurantPhone}
}

// OrderTrack is the public status view behind a tracking link.
func (h *Handler) OrderTrack(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	if !tracking.Verify(h.Config.TrackingSecret, r.URL.Query().Get("token"), id) {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}
	o, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, map[string]any{
		"id":            o.ID,
		"type":          o.Type,
		"status":        o.Status,
		"paymentStatus": o.PaymentStatus,
		"items":         o.Items,
		"total":         o.Total,
		"estimatedTime": o.EstimatedTime,
		"riderLat":      o.RiderLat,
		"riderLng":      o.RiderLng,
		"timestamp":     o.CreatedAt,
		"updatedAt":     o.UpdatedAt,
	})
}
