package memory

import (
	"context"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/repository"
)

type companyRepository struct {
	store *Store
}

func NewCompanyRepository(store *Store) repository.CompanyRepository {
	return &companyRepository{store: store}
}

func (r *companyRepository) GetByID(_ context.Context, id int64) (*domain.Company, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.companies[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	return &c, nil
}

func (r *companyRepository) List(_ context.Context) ([]domain.Company, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.Company, 0, len(r.store.companies))
	for _, c := range r.store.companies {
		out = append(out, c)
	}
	sortCompanies(out)
	return out, nil
}

func (r *companyRepository) FindByNameContaining(_ context.Context, substring string, limit int) ([]domain.Company, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.Company, 0)
	for _, c := range r.store.companies {
		if containsName(c.Name, substring) {
			out = append(out, c)
		}
	}
	sortCompanies(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
