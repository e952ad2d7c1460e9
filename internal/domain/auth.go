package domain

// User is the account returned by the problem service.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type LoginCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupCredentials struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// AuthPayload holds the claims the client reads from a session token.
type AuthPayload struct {
	UserID    string `json:"userId"`
	ExpiresAt int64  `json:"exp,omitempty"`
}
