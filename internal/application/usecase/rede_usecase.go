package usecase

import (
	"context"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
)

// NetworkUseCase casos de uso CRUD para redes de células.
type NetworkUseCase struct {
	repo repository.NetworkRepository
}

// NewNetworkUseCase constrói o caso de uso.
func NewNetworkUseCase(repo repository.NetworkRepository) *NetworkUseCase {
	return &NetworkUseCase{repo: repo}
}

// Create cria uma rede. ErrDuplicate quando a cor já existe.
func (uc *NetworkUseCase) Create(ctx context.Context, in dto.CreateNetworkRequest) (*dto.NetworkResponse, error) {
	network := &entity.Network{
		Color:       in.Color,
		Hex:         in.Hex,
		Description: in.Description,
		Active:      true,
	}
	if err := uc.repo.Create(ctx, network); err != nil {
		return nil, err
	}
	return toNetworkResponse(network), nil
}

// GetByID busca uma rede por ID.
func (uc *NetworkUseCase) GetByID(ctx context.Context, id int64) (*dto.NetworkResponse, error) {
	network, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if network == nil {
		return nil, nil
	}
	return toNetworkResponse(network), nil
}

// List lista as redes ativas.
func (uc *NetworkUseCase) List(ctx context.Context) ([]dto.NetworkResponse, error) {
	networks, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NetworkResponse, 0, len(networks))
	for _, n := range networks {
		out = append(out, *toNetworkResponse(n))
	}
	return out, nil
}

// Update atualiza os campos informados de uma rede.
func (uc *NetworkUseCase) Update(ctx context.Context, id int64, in dto.UpdateNetworkRequest) (*dto.NetworkResponse, error) {
	network, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if network == nil {
		return nil, nil
	}
	if in.Color != nil {
		network.Color = *in.Color
	}
	if in.Hex != nil {
		network.Hex = *in.Hex
	}
	if in.Description != nil {
		network.Description = *in.Description
	}
	if err := uc.repo.Update(ctx, network); err != nil {
		return nil, err
	}
	return toNetworkResponse(network), nil
}

// Deactivate desativa uma rede (soft delete). As células permanecem.
func (uc *NetworkUseCase) Deactivate(ctx context.Context, id int64) error {
	return uc.repo.Deactivate(ctx, id)
}

func toNetworkResponse(n *entity.Network) *dto.NetworkResponse {
	if n == nil {
		return nil
	}
	return &dto.NetworkResponse{
		ID:          n.ID,
		Color:       n.Color,
		Hex:         n.Hex,
		Description: n.Description,
		Active:      n.Active,
	}
}
