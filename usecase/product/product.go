package product

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/repository"
)

type UseCase struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

func New(products repository.ProductRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		products: products,
		logger:   logger,
	}
}

func (uc *UseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "list products", err)
	}
	return products, nil
}

func (uc *UseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeProductNotFound) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "load product", err)
	}
	return product, nil
}
