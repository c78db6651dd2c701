package handlers

import (
	"net/http"

	"restaurant-order-service/internal/inventory"
	"restaurant-order-service/pkg/response"
)

func (h *Handler) InventoryList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Inventory.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, list)
}

func (h *Handler) InventoryLowStock(w http.ResponseWriter, r *http.Request) {
	list, err := h.Inventory.LowStock(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, list)
}

func (h *Handler) InventoryCreate(w http.ResponseWriter, r *http.Request) {
	var body inventory.IngredientInput
	if !h.decode(w, r, &body) {
		return
	}
	ing, err := h.Inventory.Create(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": ing})
}

// InventoryAdjust changes stock by delta or sets it, clamped at zero.
func (h *Handler) InventoryAdjust(w http.ResponseWriter, r *http.Request) {
	var body inventory.Adjustment
	if !h.decode(w, r, &body) {
		return
	}
	ing, err := h.Inventory.Adjust(r.Context(), readPathString(r, "id"), body, actor(r).Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, ing)
}

// InventoryTransactions lists stock movements, for one ingredient with ?ingredientId=.
func (h *Handler) InventoryTransactions(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	if id == "" {
		id = r.URL.Query().Get("ingredientId")
	}
	list, err := h.Inventory.Transactions(r.Context(), id, readQueryInt(r, "limit", 100))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, list)
}
