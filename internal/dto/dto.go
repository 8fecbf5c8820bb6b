package dto

import "github.com/ebarcelosf/active-learn-hub-backup/internal/storage"

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the public user record. Token is only set in remote
// mode, where guarded routes expect it as a bearer credential.
type AuthResponse struct {
	User  storage.User `json:"user"`
	Token string       `json:"token,omitempty"`
}

type XPRequest struct {
	Delta int `json:"delta"`
}

type MigrateRequest struct {
	Confirm bool `json:"confirm"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Mode      string `json:"mode"`
	DB        string `json:"db,omitempty"`
}
