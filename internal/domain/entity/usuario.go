package entity

import "time"

// Papéis de usuário.
const (
	RoleAdmin      = "ADMIN"
	RoleVoluntario = "VOLUNTARIO"
)

// User representa um usuário do sistema (tabela usuarios).
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string // ADMIN | VOLUNTARIO
	Active       bool
	CreatedAt    time.Time
}
