package contract

import (
	"context"
	"time"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/repository"
)

// DefaultDuplicateWindow is how long identical terms are rejected after a successful create.
const DefaultDuplicateWindow = 5 * time.Second

// DuplicateGuard detects a repeated create request for the same terms.
// Implementations are best-effort: two identical requests racing each other may both pass.
type DuplicateGuard interface {
	IsDuplicate(ctx context.Context, terms domain.ContractTerms, now time.Time) (bool, error)
	Remember(ctx context.Context, contract *domain.Contract, now time.Time) error
}

// StoreGuard looks for contracts with identical terms created within the window.
type StoreGuard struct {
	contracts repository.ContractRepository
	window    time.Duration
}

func NewStoreGuard(contracts repository.ContractRepository, window time.Duration) *StoreGuard {
	if window <= 0 {
		window = DefaultDuplicateWindow
	}
	return &StoreGuard{contracts: contracts, window: window}
}

func (g *StoreGuard) IsDuplicate(ctx context.Context, terms domain.ContractTerms, now time.Time) (bool, error) {
	n, err := g.contracts.CountRecent(ctx, repository.RecentFilter{
		CompanyID: terms.CompanyID,
		ProductID: terms.ProductID,
		StartDate: terms.StartDate,
		EndDate:   terms.EndDate,
		Amount:    terms.Amount,
		Since:     now.Add(-g.window),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Remember is a no-op: the stored contract itself is the record.
func (g *StoreGuard) Remember(context.Context, *domain.Contract, time.Time) error {
	return nil
}
