package usecase

import (
	"context"
	"time"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
	"github.com/oalvocuritiba/kg-do-amor-api/pkg/strutil"
)

// ProductUseCase casos de uso CRUD para produtos. O saldo de estoque não é
// campo do produto: vive na tabela estoque e só muda pelo ledger.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductUseCase constrói o caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo}
}

// Create cria um produto vinculado a uma categoria existente.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	category, err := uc.categoryRepo.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	product := &entity.Product{
		Name:       in.Name,
		Unit:       in.Unit,
		CategoryID: in.CategoryID,
		Active:     true,
		CreatedAt:  time.Now(),
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	product.Category = category
	return toProductResponse(product), nil
}

// GetByID busca um produto ativo (com categoria) por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// List lista produtos ativos. search filtra por nome ignorando acentos e
// caixa ("feijao" encontra "Feijão Carioca").
func (uc *ProductUseCase) List(ctx context.Context, search string) ([]dto.ProductResponse, error) {
	products, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		if search != "" && !strutil.ContainsNormalized(p.Name, search) {
			continue
		}
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// Update atualiza os campos informados de um produto.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.CategoryID != nil {
		category, err := uc.categoryRepo.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrNotFound
		}
		product.CategoryID = *in.CategoryID
		product.Category = category
	}
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Deactivate desativa um produto (soft delete). O ledger e o saldo ficam.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id int64) error {
	return uc.repo.Deactivate(ctx, id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Unit:       p.Unit,
		CategoryID: p.CategoryID,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
		Category:   toCategoryResponse(p.Category),
	}
}
