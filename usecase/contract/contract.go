package contract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/pkg/clock"
	"github.com/fastygo/adcontract/repository"
	"github.com/fastygo/adcontract/usecase"
)

const (
	defaultPageSize = 5
	maxPageSize     = 100
	numberAttempts  = 3
	sweepBatchSize  = 100
)

// Config holds the tunables of the contract lifecycle.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	// Location is the calendar in which "today" is evaluated.
	Location *time.Location
}

// Deps are the collaborators of the contract use case. Repositories are required.
type Deps struct {
	Companies repository.CompanyRepository
	Products  repository.ProductRepository
	Contracts repository.ContractRepository
	Guard     DuplicateGuard
	Buffer    usecase.OperationBuffer
	Clock     clock.Clock
	Recorder  Recorder
	Logger    *zap.Logger
}

// CreateInput carries an already parsed create request.
type CreateInput struct {
	CompanyID int64
	ProductID int64
	StartDate time.Time
	EndDate   time.Time
	Amount    decimal.Decimal
}

// ListInput selects a page of contracts. Nil or empty fields do not filter.
type ListInput struct {
	CompanyName string
	Statuses    []domain.ContractStatus
	From        *time.Time
	To          *time.Time
	Page        int
	Size        int
}

type UseCase struct {
	companies repository.CompanyRepository
	products  repository.ProductRepository
	contracts repository.ContractRepository
	guard     DuplicateGuard
	buffer    usecase.OperationBuffer
	clock     clock.Clock
	recorder  Recorder
	logger    *zap.Logger
	cfg       Config
}

func New(deps Deps, cfg Config) *UseCase {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Guard == nil {
		deps.Guard = NewStoreGuard(deps.Contracts, DefaultDuplicateWindow)
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = maxPageSize
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &UseCase{
		companies: deps.Companies,
		products:  deps.Products,
		contracts: deps.Contracts,
		guard:     deps.Guard,
		buffer:    deps.Buffer,
		clock:     deps.Clock,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
		cfg:       cfg,
	}
}

// CreateContract resolves the company and product, rejects repeated submissions,
// validates the terms and stores a new contract numbered from the current count.
func (uc *UseCase) CreateContract(ctx context.Context, in CreateInput) (*domain.ContractView, error) {
	now := uc.clock.Now()
	today := uc.today(now)

	company, err := uc.companies.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, uc.reject(passThrough(err, domain.ErrCodeCompanyNotFound, "load company"))
	}
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, uc.reject(passThrough(err, domain.ErrCodeProductNotFound, "load product"))
	}

	terms := domain.ContractTerms{
		CompanyID: in.CompanyID,
		ProductID: in.ProductID,
		StartDate: domain.DateOf(in.StartDate),
		EndDate:   domain.DateOf(in.EndDate),
		Amount:    in.Amount,
	}

	duplicate, err := uc.guard.IsDuplicate(ctx, terms, now)
	if err != nil {
		return nil, uc.reject(domain.WrapError(domain.ErrCodeInternal, "duplicate check failed", err))
	}
	if duplicate {
		uc.logger.Info("duplicate contract request rejected",
			zap.Int64("company_id", terms.CompanyID),
			zap.Int64("product_id", terms.ProductID))
		return nil, uc.reject(domain.ErrDuplicateRequest)
	}

	if err := domain.ValidateTerms(terms, today); err != nil {
		return nil, uc.reject(err)
	}

	contract := &domain.Contract{
		CompanyID: terms.CompanyID,
		ProductID: terms.ProductID,
		StartDate: terms.StartDate,
		EndDate:   terms.EndDate,
		Amount:    terms.Amount,
		Status:    domain.StatusPending,
	}
	contract.RecomputeStatus(today)
	contract.Touch(now)

	if err := uc.insertNumbered(ctx, contract, today); err != nil {
		return nil, uc.reject(err)
	}

	if err := uc.guard.Remember(ctx, contract, now); err != nil {
		uc.logger.Warn("failed to remember contract terms", zap.Int64("contract_id", contract.ID), zap.Error(err))
	}

	uc.recorder.ContractCreated(contract.Status)
	uc.logger.Info("contract created",
		zap.Int64("contract_id", contract.ID),
		zap.String("contract_number", contract.ContractNumber),
		zap.String("status", string(contract.Status)))

	return &domain.ContractView{Contract: *contract, Company: *company, Product: *product}, nil
}

// insertNumbered assigns CNT-<date>-<count+1> and retries with the next sequence
// when the unique constraint reports a concurrent insert took the number.
func (uc *UseCase) insertNumbered(ctx context.Context, contract *domain.Contract, today time.Time) error {
	count, err := uc.contracts.Count(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "count contracts", err)
	}

	for attempt := 0; attempt < numberAttempts; attempt++ {
		contract.ContractNumber = domain.FormatContractNumber(today, count+1+int64(attempt))
		err = uc.contracts.Create(ctx, contract)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrContractNumberTaken) {
			return domain.WrapError(domain.ErrCodeInternal, "store contract", err)
		}
		uc.logger.Warn("contract number collision",
			zap.String("contract_number", contract.ContractNumber),
			zap.Int("attempt", attempt+1))
	}
	return domain.WrapError(domain.ErrCodeInternal, "allocate contract number", err)
}

// GetContract returns the contract with its status derived for today.
func (uc *UseCase) GetContract(ctx context.Context, id int64) (*domain.ContractView, error) {
	view, err := uc.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, passThrough(err, domain.ErrCodeContractNotFound, "load contract")
	}
	now := uc.clock.Now()
	uc.refresh(ctx, &view.Contract, now)
	return view, nil
}

// ListContracts returns one page of contracts, newest period first.
// The status filter applies to the status derived for today.
func (uc *UseCase) ListContracts(ctx context.Context, in ListInput) (*domain.Page[domain.ContractView], error) {
	now := uc.clock.Now()
	page, size := uc.normalizePage(in.Page, in.Size)

	var from, to *time.Time
	if in.From != nil {
		d := domain.DateOf(*in.From)
		from = &d
	}
	if in.To != nil {
		d := domain.DateOf(*in.To)
		to = &d
	}

	views, total, err := uc.contracts.Find(ctx, repository.ContractFilter{
		CompanyName: in.CompanyName,
		Statuses:    in.Statuses,
		From:        from,
		To:          to,
		Today:       uc.today(now),
		Limit:       size,
		Offset:      page * size,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "list contracts", err)
	}

	for i := range views {
		uc.refresh(ctx, &views[i].Contract, now)
	}
	return domain.NewPage(views, page, size, total), nil
}

// CancelContract moves a pending or running contract to CANCELLED.
func (uc *UseCase) CancelContract(ctx context.Context, id int64) (*domain.ContractView, error) {
	view, err := uc.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, passThrough(err, domain.ErrCodeContractNotFound, "load contract")
	}
	now := uc.clock.Now()
	uc.refresh(ctx, &view.Contract, now)

	if err := view.Cancel(); err != nil {
		return nil, err
	}
	if err := uc.contracts.UpdateStatus(ctx, view.ID, view.Status, now); err != nil {
		return nil, passThrough(err, domain.ErrCodeContractNotFound, "cancel contract")
	}
	view.UpdatedAt = now

	uc.recorder.ContractCancelled()
	uc.logger.Info("contract cancelled",
		zap.Int64("contract_id", view.ID),
		zap.String("contract_number", view.ContractNumber))
	return view, nil
}

// RefreshStatuses persists the derived status of every contract whose stored value is stale.
func (uc *UseCase) RefreshStatuses(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	today := uc.today(now)

	updated := 0
	for {
		stale, err := uc.contracts.ListStale(ctx, today, sweepBatchSize)
		if err != nil {
			return updated, fmt.Errorf("list stale contracts: %w", err)
		}
		if len(stale) == 0 {
			return updated, nil
		}
		batch := 0
		for i := range stale {
			c := &stale[i]
			from := c.Status
			if !c.RecomputeStatus(today) {
				continue
			}
			if err := uc.contracts.UpdateStatus(ctx, c.ID, c.Status, now); err != nil {
				return updated, fmt.Errorf("update contract %d status: %w", c.ID, err)
			}
			uc.recorder.StatusWrittenBack(from, c.Status)
			batch++
		}
		updated += batch
		if batch == 0 || len(stale) < sweepBatchSize {
			return updated, nil
		}
		if err := ctx.Err(); err != nil {
			return updated, err
		}
	}
}

// refresh derives the status for today and writes it back when it changed.
// A failed write never fails the read: the update is handed to the operation buffer.
func (uc *UseCase) refresh(ctx context.Context, c *domain.Contract, now time.Time) {
	from := c.Status
	if !c.RecomputeStatus(uc.today(now)) {
		return
	}

	err := uc.contracts.UpdateStatus(ctx, c.ID, c.Status, now)
	if err == nil {
		c.UpdatedAt = now
		uc.recorder.StatusWrittenBack(from, c.Status)
		return
	}

	uc.logger.Warn("status write-back failed",
		zap.Int64("contract_id", c.ID),
		zap.String("status", string(c.Status)),
		zap.Error(err))
	if uc.buffer == nil {
		return
	}
	if err := uc.buffer.BufferStatusUpdate(ctx, c.ID, c.Status, now); err != nil {
		uc.logger.Error("failed to buffer status write-back", zap.Int64("contract_id", c.ID), zap.Error(err))
		return
	}
	uc.logger.Warn("status write-back buffered", zap.Int64("contract_id", c.ID))
}

func (uc *UseCase) normalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = uc.cfg.DefaultPageSize
	}
	if size > uc.cfg.MaxPageSize {
		size = uc.cfg.MaxPageSize
	}
	// page*size must stay a valid offset.
	if limit := math.MaxInt / size; page > limit {
		page = limit
	}
	return page, size
}

func (uc *UseCase) today(now time.Time) time.Time {
	return domain.Today(now, uc.cfg.Location)
}

func (uc *UseCase) reject(err error) error {
	uc.recorder.ContractRejected(domain.CodeOf(err))
	return err
}

// passThrough keeps the expected domain error and classifies anything else as internal.
func passThrough(err error, expected domain.ErrorCode, op string) error {
	if domain.IsDomainError(err, expected) {
		return err
	}
	return domain.WrapError(domain.ErrCodeInternal, op, err)
}
