package dto

// CreateNetworkRequest entrada para criar uma rede.
type CreateNetworkRequest struct {
	Color       string `json:"cor" validate:"required,min=2,max=40"`
	Hex         string `json:"hex" validate:"required,hexcolor"`
	Description string `json:"descricao" validate:"max=300"`
}

// UpdateNetworkRequest entrada para atualizar uma rede (campos opcionais).
type UpdateNetworkRequest struct {
	Color       *string `json:"cor" validate:"omitempty,min=2,max=40"`
	Hex         *string `json:"hex" validate:"omitempty,hexcolor"`
	Description *string `json:"descricao" validate:"omitempty,max=300"`
}

// NetworkResponse saída de uma rede.
type NetworkResponse struct {
	ID          int64  `json:"id"`
	Color       string `json:"cor"`
	Hex         string `json:"hex"`
	Description string `json:"descricao"`
	Active      bool   `json:"ativo"`
}
