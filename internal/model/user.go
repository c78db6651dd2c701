package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleChef     Role = "chef"
	RoleRider    Role = "rider"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleChef, RoleRider, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DemoUsernamePrefix marks accounts created through demo login.
const DemoUsernamePrefix = "demo_"

// IsDemo reports whether the account was created through demo login.
func (u User) IsDemo() bool {
	return strings.HasPrefix(u.Username, DemoUsernamePrefix)
}
