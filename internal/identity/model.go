package identity

import "time"

const (
	// RoleCustomer is the default role for registered users.
	RoleCustomer = "customer"
	// RoleAdmin marks privileged operators who may credit wallets and act on
	// behalf of other users.
	RoleAdmin = "admin"
)

// User represents a registered wallet owner.
type User struct {
	ID           string
	Email        string
	Role         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Credentials is the email/password pair supplied at registration and login.
type Credentials struct {
	Email    string
	Password string
}
