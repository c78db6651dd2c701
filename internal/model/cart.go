package model

import "strings"

// GuestScope is the storage scope of unauthenticated callers.
const GuestScope = "guest"

// StorageScope derives the key suffix that isolates per-user cart, favorites and
// selected voucher state.
func StorageScope(username string) string {
	if username == "" {
		return GuestScope
	}
	if strings.HasPrefix(username, DemoUsernamePrefix) {
		return "demo:" + username
	}
	return "user:" + username
}

type CartLine struct {
	MenuItemID string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Image      string  `json:"image,omitempty"`
}

type Cart struct {
	Scope string     `json:"scope"`
	Lines []CartLine `json:"items"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
