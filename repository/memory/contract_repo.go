package memory

import (
	"context"
	"time"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/repository"
)

type contractRepository struct {
	store *Store
}

func NewContractRepository(store *Store) repository.ContractRepository {
	return &contractRepository{store: store}
}

func (r *contractRepository) GetByID(_ context.Context, id int64) (*domain.ContractView, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	view := r.store.view(c)
	return &view, nil
}

func (r *contractRepository) Create(_ context.Context, contract *domain.Contract) error {
	if contract == nil {
		return domain.ErrInvalidPayload
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.numbers[contract.ContractNumber]; taken {
		return domain.ErrContractNumberTaken
	}
	if _, ok := r.store.companies[contract.CompanyID]; !ok {
		return domain.ErrCompanyNotFound
	}
	if _, ok := r.store.products[contract.ProductID]; !ok {
		return domain.ErrProductNotFound
	}

	r.store.lastContractID++
	contract.ID = r.store.lastContractID
	if contract.CreatedAt.IsZero() {
		now := time.Now().UTC()
		contract.CreatedAt, contract.UpdatedAt = now, now
	}
	r.store.contracts[contract.ID] = *contract
	r.store.numbers[contract.ContractNumber] = contract.ID
	return nil
}

func (r *contractRepository) UpdateStatus(_ context.Context, id int64, status domain.ContractStatus, updatedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.contracts[id]
	if !ok {
		return domain.ErrContractNotFound
	}
	c.Status = status
	c.UpdatedAt = updatedAt
	r.store.contracts[id] = c
	return nil
}

func (r *contractRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.contracts)), nil
}

func (r *contractRepository) CountRecent(_ context.Context, filter repository.RecentFilter) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var n int64
	for _, c := range r.store.contracts {
		if c.CompanyID == filter.CompanyID &&
			c.ProductID == filter.ProductID &&
			c.StartDate.Equal(filter.StartDate) &&
			c.EndDate.Equal(filter.EndDate) &&
			c.Amount.Equal(filter.Amount) &&
			c.CreatedAt.After(filter.Since) {
			n++
		}
	}
	return n, nil
}

func (r *contractRepository) Find(_ context.Context, filter repository.ContractFilter) ([]domain.ContractView, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	wanted := make(map[domain.ContractStatus]struct{}, len(filter.Statuses))
	for _, s := range filter.Statuses {
		wanted[s] = struct{}{}
	}

	matches := make([]domain.ContractView, 0)
	for _, c := range r.store.contracts {
		view := r.store.view(c)
		if !containsName(view.Company.Name, filter.CompanyName) {
			continue
		}
		if filter.From != nil && view.EndDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && view.StartDate.After(*filter.To) {
			continue
		}
		if len(wanted) > 0 {
			derived := domain.DeriveStatus(c.Status, c.StartDate, c.EndDate, filter.Today)
			if _, ok := wanted[derived]; !ok {
				continue
			}
		}
		matches = append(matches, view)
	}
	sortContracts(matches)

	total := int64(len(matches))
	if filter.Offset < 0 || filter.Offset >= len(matches) {
		return []domain.ContractView{}, total, nil
	}
	end := len(matches)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matches[filter.Offset:end], total, nil
}

func (r *contractRepository) ListStale(_ context.Context, today time.Time, limit int) ([]domain.Contract, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.Contract, 0)
	for _, c := range r.store.contracts {
		if c.Status.IsTerminal() {
			continue
		}
		if domain.DeriveStatus(c.Status, c.StartDate, c.EndDate, today) != c.Status {
			out = append(out, c)
		}
	}
	sortByID(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
