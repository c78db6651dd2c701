package model

import "time"

type Ingredient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Stock     float64   `json:"stock"`
	Unit      string    `json:"unit"`
	MinStock  float64   `json:"minStock"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsLow reports whether stock has reached the reorder threshold.
func (i Ingredient) IsLow() bool {
	return i.Stock <= i.MinStock
}

type TransactionKind string

const (
	TransactionIn  TransactionKind = "in"
	TransactionOut TransactionKind = "out"
)

type InventoryTransaction struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredientId"`
	Kind         TransactionKind `json:"kind"`
	Quantity     float64         `json:"quantity"`
	Reason       string          `json:"reason"`
	StockAfter   float64         `json:"stockAfter"`
	CreatedBy    string          `json:"createdBy,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
