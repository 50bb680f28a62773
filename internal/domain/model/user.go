package model

import "time"

// Role is the closed set of actor roles.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleShipper  Role = "SHIPPER"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole maps a raw claim value onto a known role.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleStaff, RoleShipper, RoleCustomer:
		return Role(raw), true
	default:
		return "", false
	}
}

// User represents an account of any role.
type User struct {
	ID        int64
	Email     string
	Role      Role
	CreatedAt time.Time
}

// Customer is the buyer profile attached to a user.
type Customer struct {
	ID     int64
	UserID int64
	Name   string
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   Role
}
