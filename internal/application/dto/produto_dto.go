package dto

import "time"

// CreateProductRequest entrada para criar um produto.
type CreateProductRequest struct {
	Name       string `json:"nome" validate:"required,min=2,max=160"`
	Unit       string `json:"unidade" validate:"required,oneof=kg un lt pct cx"`
	CategoryID int64  `json:"categoria_id" validate:"required,gt=0"`
}

// UpdateProductRequest entrada para atualizar um produto.
type UpdateProductRequest struct {
	Name       *string `json:"nome" validate:"omitempty,min=2,max=160"`
	Unit       *string `json:"unidade" validate:"omitempty,oneof=kg un lt pct cx"`
	CategoryID *int64  `json:"categoria_id" validate:"omitempty,gt=0"`
}

// ProductResponse saída de um produto.
type ProductResponse struct {
	ID         int64             `json:"id"`
	Name       string            `json:"nome"`
	Unit       string            `json:"unidade"`
	CategoryID int64             `json:"categoria_id"`
	Active     bool              `json:"ativo"`
	CreatedAt  time.Time         `json:"criado_em"`
	Category   *CategoryResponse `json:"categoria,omitempty"`
}
