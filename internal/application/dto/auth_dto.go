package dto

import "time"

// LoginRequest credenciais de login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required,min=6"`
}

// LoginResponse token emitido e dados do usuário.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"usuario"`
}

// RegisterUserRequest entrada para cadastrar um usuário (somente ADMIN).
type RegisterUserRequest struct {
	Name     string `json:"nome" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required,min=6,max=72"`
	Role     string `json:"papel" validate:"required,oneof=ADMIN VOLUNTARIO"`
}

// UserResponse saída de um usuário (nunca inclui o hash de senha).
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Role      string    `json:"papel"`
	Active    bool      `json:"ativo"`
	CreatedAt time.Time `json:"criado_em"`
}
