package dto

// CreateCategoryRequest entrada para criar uma categoria.
type CreateCategoryRequest struct {
	Name        string `json:"nome" validate:"required,min=2,max=120"`
	Description string `json:"descricao" validate:"max=300"`
	Color       string `json:"cor" validate:"omitempty,hexcolor"`
}

// UpdateCategoryRequest entrada para atualizar uma categoria.
type UpdateCategoryRequest struct {
	Name        *string `json:"nome" validate:"omitempty,min=2,max=120"`
	Description *string `json:"descricao" validate:"omitempty,max=300"`
	Color       *string `json:"cor" validate:"omitempty,hexcolor"`
}

// CategoryResponse saída de uma categoria.
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"nome"`
	Description string `json:"descricao"`
	Color       string `json:"cor"`
	Active      bool   `json:"ativo"`
}
