package auth

import "time"

// RoleAdmin is the only role the back-office knows.
const RoleAdmin = "admin"

// User is an account allowed to sign in to the back-office.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	IsActive     bool
}

// Admin is the authenticated principal attached to a request.
type Admin struct {
	ID      string    `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Role    string    `json:"role"`
	LoginAt time.Time `json:"loginAt"`
}

func (u *User) principal(at time.Time) Admin {
	return Admin{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, LoginAt: at}
}
