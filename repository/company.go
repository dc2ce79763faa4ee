package repository

import (
	"context"

	"github.com/fastygo/adcontract/domain"
)

type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	List(ctx context.Context) ([]domain.Company, error)
	// FindByNameContaining matches name substrings case-sensitively.
	FindByNameContaining(ctx context.Context, substring string, limit int) ([]domain.Company, error)
}
