package models

// User represents a registered rider.
type User struct {
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"`
}

// NewUser creates a user. The password is expected in plaintext and is
// replaced by its protected form on registration.
func NewUser(name, email, password string) *User {
	return &User{Name: name, Email: email, Password: password}
}

// Claims represents JWT claims
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Exp   int64  `json:"exp"`
}
