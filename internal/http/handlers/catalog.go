package handlers

import (
	"net/http"

	"restaurant-order-service/internal/catalog"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/pkg/response"
)

type discountRequest struct {
	Type   model.DiscountKind `json:"type" validate:"required,oneof=none percent fixed"`
	Value  float64            `json:"value" validate:"gte=0"`
	Active *bool              `json:"active"`
}

// MenuList serves the menu. Customers and guests only see available items; kitchen and
// management roles see everything with ?all=true.
func (h *Handler) MenuList(w http.ResponseWriter, r *http.Request) {
	includeUnavailable := false
	if r.URL.Query().Get("all") == "true" {
		switch actor(r).Role {
		case model.RoleChef, model.RoleStaff, model.RoleAdmin:
			includeUnavailable = true
		}
	}
	items, err := h.Catalog.ListMenu(r.Context(), includeUnavailable)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, items)
}

func (h *Handler) MenuDetail(w http.ResponseWriter, r *http.Request) {
	item, err := h.Catalog.GetMenuItem(r.Context(), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, item)
}

func (h *Handler) MenuCreate(w http.ResponseWriter, r *http.Request) {
	var body catalog.MenuItemInput
	if !h.decode(w, r, &body) {
		return
	}
	item, err := h.Catalog.CreateMenuItem(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": item})
}

func (h *Handler) MenuUpdate(w http.ResponseWriter, r *http.Request) {
	var body catalog.MenuItemInput
	if !h.decode(w, r, &body) {
		return
	}
	item, err := h.Catalog.UpdateMenuItem(r.Context(), readPathString(r, "id"), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, item)
}

func (h *Handler) MenuToggleAvailable(w http.ResponseWriter, r *http.Request) {
	item, err := h.Catalog.ToggleAvailability(r.Context(), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, item)
}

func (h *Handler) MenuDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := readPathString(r, "id")
	item, err := h.Catalog.GetMenuItem(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Catalog.DeleteMenuItem(ctx, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.Uploads != nil && item.Image != "" {
		h.Uploads.Remove(ctx, item.Image)
	}
	response.SuccessMessage(w, http.StatusOK, "Menu item deleted", map[string]any{"id": id})
}

func (h *Handler) SetList(w http.ResponseWriter, r *http.Request) {
	sets, err := h.Catalog.ListSets(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, sets)
}

func (h *Handler) SetDetail(w http.ResponseWriter, r *http.Request) {
	set, err := h.Catalog.GetSet(r.Context(), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, set)
}

func (h *Handler) SetCreate(w http.ResponseWriter, r *http.Request) {
	var body catalog.SetInput
	if !h.decode(w, r, &body) {
		return
	}
	set, err := h.Catalog.CreateSet(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": set})
}

func (h *Handler) SetUpdate(w http.ResponseWriter, r *http.Request) {
	var body catalog.SetInput
	if !h.decode(w, r, &body) {
		return
	}
	set, err := h.Catalog.UpdateSet(r.Context(), readPathString(r, "id"), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, set)
}

func (h *Handler) SetDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := readPathString(r, "id")
	set, err := h.Catalog.GetSet(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Catalog.DeleteSet(ctx, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.Uploads != nil && set.Image != "" {
		h.Uploads.Remove(ctx, set.Image)
	}
	response.SuccessMessage(w, http.StatusOK, "Set deleted", map[string]any{"id": id})
}

func discountTarget(r *http.Request) model.DiscountTarget {
	return model.DiscountTarget(readPathString(r, "target"))
}

// DiscountSet configures /discounts/{target}/{id} where target is item or set.
func (h *Handler) DiscountSet(w http.ResponseWriter, r *http.Request) {
	var body discountRequest
	if !h.decode(w, r, &body) {
		return
	}
	active := true
	if body.Active != nil {
		active = *body.Active
	}
	preview, err := h.Catalog.SetDiscount(r.Context(), discountTarget(r), readPathString(r, "id"),
		model.Discount{Kind: body.Type, Value: body.Value, Active: active})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, preview)
}

func (h *Handler) DiscountClear(w http.ResponseWriter, r *http.Request) {
	target := discountTarget(r)
	if !target.IsValid() {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Discount target must be item or set")
		return
	}
	if err := h.Catalog.ClearDiscount(r.Context(), target, readPathString(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.SuccessMessage(w, http.StatusOK, "Discount cleared", nil)
}

func (h *Handler) DiscountPreview(w http.ResponseWriter, r *http.Request) {
	target := discountTarget(r)
	if !target.IsValid() {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Discount target must be item or set")
		return
	}
	preview, err := h.Catalog.Preview(r.Context(), target, readPathString(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, preview)
}
