package model

import "time"

type MenuCategory string

const (
	CategoryAppetizer MenuCategory = "appetizer"
	CategoryMain      MenuCategory = "main"
	CategoryDessert   MenuCategory = "dessert"
	CategoryBeverage  MenuCategory = "beverage"
	CategoryOther     MenuCategory = "other"
)

type MenuItem struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Category         MenuCategory       `json:"category"`
	Price            float64            `json:"price"`
	Description      string             `json:"description,omitempty"`
	Image            string             `json:"image,omitempty"`
	Available        bool               `json:"available"`
	IngredientsUsage map[string]float64 `json:"ingredientsUsage,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

func (m *MenuItem) Clone() *MenuItem {
	if m == nil {
		return nil
	}
	cp := *m
	if m.IngredientsUsage != nil {
		cp.IngredientsUsage = make(map[string]float64, len(m.IngredientsUsage))
		for k, v := range m.IngredientsUsage {
			cp.IngredientsUsage[k] = v
		}
	}
	return &cp
}

type SetItem struct {
	MenuItemID string `json:"id"`
	Quantity   int    `json:"quantity"`
}

// FoodSet is a combo of menu items. Its price is derived, never stored.
type FoodSet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Items     []SetItem `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *FoodSet) Clone() *FoodSet {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Items = append([]SetItem(nil), s.Items...)
	return &cp
}

type DiscountKind string

const (
	DiscountNone    DiscountKind = "none"
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

func (k DiscountKind) IsValid() bool {
	return k == DiscountNone || k == DiscountPercent || k == DiscountFixed
}

type Discount struct {
	Kind   DiscountKind `json:"type"`
	Value  float64      `json:"value"`
	Active bool         `json:"active"`
}

// DiscountTarget selects which of the two discount maps an entry belongs to.
type DiscountTarget string

const (
	DiscountTargetItem DiscountTarget = "item"
	DiscountTargetSet  DiscountTarget = "set"
)

func (t DiscountTarget) IsValid() bool {
	return t == DiscountTargetItem || t == DiscountTargetSet
}
