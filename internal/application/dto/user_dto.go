package dto

import "time"

// RegisterRequest : entrée d'inscription (auth). Le mot de passe arrive en
// clair et est haché en bcrypt dans le cas d'usage.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	CompanyID string `json:"company_id" validate:"required,uuid"`
	Name      string `json:"name" validate:"omitempty,max=200"`
	Role      string `json:"role" validate:"omitempty,oneof=admin comptable commercial"`
}

// UserResponse : sortie d'un utilisateur (sans mot de passe).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChangeRoleRequest : changement de rôle d'un utilisateur (admin seulement).
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin comptable commercial"`
}

// LoginRequest : entrée de connexion.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse : sortie avec le token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
