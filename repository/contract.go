package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastygo/adcontract/domain"
)

// ContractFilter narrows a contract listing. Zero values disable a criterion.
type ContractFilter struct {
	// CompanyName is a case-sensitive substring of the company name.
	CompanyName string
	// Statuses is matched against the status derived for Today.
	Statuses []domain.ContractStatus
	// From and To select contracts whose date interval overlaps [From, To].
	From *time.Time
	To   *time.Time
	// Today is the calendar day used for status derivation.
	Today  time.Time
	Limit  int
	Offset int
}

// RecentFilter identifies contracts with identical terms created after Since.
type RecentFilter struct {
	CompanyID int64
	ProductID int64
	StartDate time.Time
	EndDate   time.Time
	Amount    decimal.Decimal
	Since     time.Time
}

type ContractRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ContractView, error)
	// Create inserts the contract and fills ID, CreatedAt and UpdatedAt.
	// It returns domain.ErrContractNumberTaken when the number is already used.
	Create(ctx context.Context, contract *domain.Contract) error
	UpdateStatus(ctx context.Context, id int64, status domain.ContractStatus, updatedAt time.Time) error
	Count(ctx context.Context) (int64, error)
	CountRecent(ctx context.Context, filter RecentFilter) (int64, error)
	// Find returns one page of matches, ordered by start date, end date and id descending,
	// plus the total number of matches.
	Find(ctx context.Context, filter ContractFilter) ([]domain.ContractView, int64, error)
	// ListStale returns non-terminal contracts whose stored status differs from the one derived for today.
	ListStale(ctx context.Context, today time.Time, limit int) ([]domain.Contract, error)
}
