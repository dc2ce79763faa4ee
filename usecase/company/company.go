package company

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/repository"
)

// MaxSearchResults bounds the autocomplete search.
const MaxSearchResults = 20

type UseCase struct {
	companies repository.CompanyRepository
	logger    *zap.Logger
}

func New(companies repository.CompanyRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		companies: companies,
		logger:    logger,
	}
}

func (uc *UseCase) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	companies, err := uc.companies.List(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "list companies", err)
	}
	return companies, nil
}

// SearchCompanies returns up to MaxSearchResults companies whose name contains keyword.
// A blank keyword yields no results.
func (uc *UseCase) SearchCompanies(ctx context.Context, keyword string) ([]domain.Company, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []domain.Company{}, nil
	}

	companies, err := uc.companies.FindByNameContaining(ctx, keyword, MaxSearchResults)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "search companies", err)
	}
	uc.logger.Debug("company search", zap.String("keyword", keyword), zap.Int("count", len(companies)))
	return companies, nil
}

func (uc *UseCase) GetCompany(ctx context.Context, id int64) (*domain.Company, error) {
	company, err := uc.companies.GetByID(ctx, id)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeCompanyNotFound) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "load company", err)
	}
	return company, nil
}
