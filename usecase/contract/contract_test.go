package contract

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/pkg/clock"
	"github.com/fastygo/adcontract/repository"
	"github.com/fastygo/adcontract/repository/memory"
)

var contractNumberPattern = regexp.MustCompile(`^CNT-\d{8}-\d{4}$`)

// flakyContracts fails selected calls of the wrapped repository.
type flakyContracts struct {
	repository.ContractRepository
	failUpdates  bool
	takenNumbers int
}

func (f *flakyContracts) UpdateStatus(ctx context.Context, id int64, status domain.ContractStatus, at time.Time) error {
	if f.failUpdates {
		return errors.New("connection refused")
	}
	return f.ContractRepository.UpdateStatus(ctx, id, status, at)
}

func (f *flakyContracts) Create(ctx context.Context, c *domain.Contract) error {
	if f.takenNumbers > 0 {
		f.takenNumbers--
		return domain.ErrContractNumberTaken
	}
	return f.ContractRepository.Create(ctx, c)
}

type bufferedUpdate struct {
	id     int64
	status domain.ContractStatus
}

type recordingBuffer struct {
	mu      sync.Mutex
	updates []bufferedUpdate
}

func (b *recordingBuffer) BufferStatusUpdate(_ context.Context, id int64, status domain.ContractStatus, _ time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, bufferedUpdate{id: id, status: status})
	return nil
}

type ContractUseCaseSuite struct {
	suite.Suite
	ctx       context.Context
	clock     *clock.Fixed
	store     *memory.Store
	contracts *flakyContracts
	buffer    *recordingBuffer
	uc        *UseCase
}

func TestContractUseCaseSuite(t *testing.T) {
	suite.Run(t, new(ContractUseCaseSuite))
}

func (s *ContractUseCaseSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFixed(time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC))
	s.store = memory.NewStore()
	memory.Seed(s.store, s.clock.Now())
	s.contracts = &flakyContracts{ContractRepository: memory.NewContractRepository(s.store)}
	s.buffer = &recordingBuffer{}
	s.uc = New(Deps{
		Companies: memory.NewCompanyRepository(s.store),
		Products:  memory.NewProductRepository(s.store),
		Contracts: s.contracts,
		Guard:     NewStoreGuard(s.contracts, DefaultDuplicateWindow),
		Buffer:    s.buffer,
		Clock:     s.clock,
	}, Config{})
}

func (s *ContractUseCaseSuite) today() time.Time {
	return domain.DateOf(s.clock.Now())
}

func (s *ContractUseCaseSuite) input(startOffset, length int, amount int64) CreateInput {
	start := domain.AddDays(s.today(), startOffset)
	return CreateInput{
		CompanyID: 1,
		ProductID: 1,
		StartDate: start,
		EndDate:   domain.AddDays(start, length),
		Amount:    decimal.NewFromInt(amount),
	}
}

// create advances the clock past the duplicate window so consecutive creates never collide.
func (s *ContractUseCaseSuite) create(in CreateInput) (*domain.ContractView, error) {
	s.clock.Advance(10 * time.Second)
	return s.uc.CreateContract(s.ctx, in)
}

func (s *ContractUseCaseSuite) TestCreateStatusDependsOnStartOffset() {
	s.Run("starting today is in progress", func() {
		view, err := s.create(s.input(0, 28, 10_000))
		s.Require().NoError(err)
		s.Equal(domain.StatusInProgress, view.Status)
	})

	for _, offset := range []int{1, 7, 365} {
		view, err := s.create(s.input(offset, 40, 500_000))
		s.Require().NoError(err)
		s.Equal(domain.StatusPending, view.Status, "offset %d", offset)
	}
}

func (s *ContractUseCaseSuite) TestCreateEndDateBoundary() {
	_, err := s.create(s.input(1, 27, 100_000))
	s.True(domain.IsDomainError(err, domain.ErrCodeInvalidEndDate))

	_, err = s.create(s.input(1, 28, 100_000))
	s.NoError(err)
}

func (s *ContractUseCaseSuite) TestCreateAmountBoundaries() {
	cases := []struct {
		amount int64
		ok     bool
	}{
		{9_999, false},
		{10_000, true},
		{1_000_000, true},
		{1_000_001, false},
	}
	for i, tc := range cases {
		// distinct start dates keep the requests apart for the duplicate guard
		_, err := s.create(s.input(i+1, 30, tc.amount))
		if tc.ok {
			s.NoError(err, "amount %d", tc.amount)
			continue
		}
		s.True(domain.IsDomainError(err, domain.ErrCodeInvalidAmount), "amount %d", tc.amount)
	}
}

func (s *ContractUseCaseSuite) TestCreateRejectsPastStart() {
	_, err := s.create(s.input(-1, 30, 100_000))
	s.True(domain.IsDomainError(err, domain.ErrCodeInvalidStartDate))
}

func (s *ContractUseCaseSuite) TestCreateUnknownReferences() {
	in := s.input(1, 28, 100_000)
	in.CompanyID = 404
	_, err := s.create(in)
	s.True(domain.IsDomainError(err, domain.ErrCodeCompanyNotFound))

	in = s.input(1, 28, 100_000)
	in.ProductID = 404
	_, err = s.create(in)
	s.True(domain.IsDomainError(err, domain.ErrCodeProductNotFound))
}

func (s *ContractUseCaseSuite) TestCreateEndToEnd() {
	view, err := s.create(s.input(1, 28, 100_000))
	s.Require().NoError(err)

	s.Equal(domain.StatusPending, view.Status)
	s.Regexp(contractNumberPattern, view.ContractNumber)
	s.Equal("CNT-20261015-0001", view.ContractNumber)
	s.Equal("Blue Harbor Foods", view.Company.Name)
	s.Equal("Search Ads Premium", view.Product.Name)
	s.NotZero(view.ID)

	next, err := s.create(s.input(2, 28, 100_000))
	s.Require().NoError(err)
	s.Equal("CNT-20261015-0002", next.ContractNumber)
}

func (s *ContractUseCaseSuite) TestDuplicateWithinWindow() {
	in := s.input(1, 28, 100_000)

	_, err := s.create(in)
	s.Require().NoError(err)

	s.clock.Advance(3 * time.Second)
	_, err = s.uc.CreateContract(s.ctx, in)
	s.True(domain.IsDomainError(err, domain.ErrCodeDuplicateRequest))

	// amount equality is exact decimal equality, independent of scale
	scaled := in
	scaled.Amount = decimal.RequireFromString("100000.00")
	_, err = s.uc.CreateContract(s.ctx, scaled)
	s.True(domain.IsDomainError(err, domain.ErrCodeDuplicateRequest))

	different := in
	different.Amount = decimal.NewFromInt(100_001)
	_, err = s.uc.CreateContract(s.ctx, different)
	s.NoError(err)

	s.clock.Advance(3 * time.Second)
	_, err = s.uc.CreateContract(s.ctx, in)
	s.NoError(err, "window has passed")
}

func (s *ContractUseCaseSuite) TestDuplicateCheckedBeforeValidation() {
	s.clock.Set(time.Date(2026, 10, 15, 23, 59, 58, 0, time.UTC))
	in := s.input(0, 28, 100_000)
	_, err := s.uc.CreateContract(s.ctx, in)
	s.Require().NoError(err)

	// three seconds later the start date lies in the past, but the repeat is reported as a duplicate
	s.clock.Set(time.Date(2026, 10, 16, 0, 0, 1, 0, time.UTC))
	_, err = s.uc.CreateContract(s.ctx, in)
	s.True(domain.IsDomainError(err, domain.ErrCodeDuplicateRequest))
}

func (s *ContractUseCaseSuite) TestContractNumberCollisionRetries() {
	s.contracts.takenNumbers = 2
	view, err := s.create(s.input(1, 28, 100_000))
	s.Require().NoError(err)
	s.Equal("CNT-20261015-0003", view.ContractNumber)

	s.contracts.takenNumbers = numberAttempts
	_, err = s.create(s.input(2, 28, 100_000))
	s.True(domain.IsDomainError(err, domain.ErrCodeInternal))
}

func (s *ContractUseCaseSuite) TestGetRecomputesAndWritesBack() {
	view, err := s.create(s.input(1, 28, 100_000))
	s.Require().NoError(err)

	got, err := s.uc.GetContract(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, got.Status)

	s.clock.Advance(24 * time.Hour)
	first, err := s.uc.GetContract(s.ctx, view.ID)
	s.Require().NoError(err)
	second, err := s.uc.GetContract(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusInProgress, first.Status)
	s.Equal(first.Status, second.Status)

	stored, err := s.contracts.GetByID(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusInProgress, stored.Status)

	s.clock.Advance(40 * 24 * time.Hour)
	done, err := s.uc.GetContract(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, done.Status)
}

func (s *ContractUseCaseSuite) TestGetBuffersFailedWriteBack() {
	view, err := s.create(s.input(1, 28, 100_000))
	s.Require().NoError(err)

	s.contracts.failUpdates = true
	s.clock.Advance(24 * time.Hour)

	got, err := s.uc.GetContract(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusInProgress, got.Status)
	s.Equal([]bufferedUpdate{{id: view.ID, status: domain.StatusInProgress}}, s.buffer.updates)
}

func (s *ContractUseCaseSuite) TestGetNotFound() {
	_, err := s.uc.GetContract(s.ctx, 12345)
	s.True(domain.IsDomainError(err, domain.ErrCodeContractNotFound))
}

func (s *ContractUseCaseSuite) TestCancel() {
	s.Run("pending", func() {
		view, err := s.create(s.input(5, 28, 100_000))
		s.Require().NoError(err)
		cancelled, err := s.uc.CancelContract(s.ctx, view.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusCancelled, cancelled.Status)
	})

	s.Run("in progress", func() {
		view, err := s.create(s.input(0, 28, 200_000))
		s.Require().NoError(err)
		s.Require().Equal(domain.StatusInProgress, view.Status)
		cancelled, err := s.uc.CancelContract(s.ctx, view.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusCancelled, cancelled.Status)

		got, err := s.uc.GetContract(s.ctx, view.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusCancelled, got.Status)
	})

	s.Run("completed", func() {
		view, err := s.create(s.input(0, 28, 300_000))
		s.Require().NoError(err)
		s.clock.Advance(60 * 24 * time.Hour)

		_, err = s.uc.CancelContract(s.ctx, view.ID)
		s.True(domain.IsDomainError(err, domain.ErrCodeInvalidState))

		got, err := s.uc.GetContract(s.ctx, view.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusCompleted, got.Status)
	})

	s.Run("missing", func() {
		_, err := s.uc.CancelContract(s.ctx, 999)
		s.True(domain.IsDomainError(err, domain.ErrCodeContractNotFound))
	})
}

func (s *ContractUseCaseSuite) TestListEmptyStore() {
	page, err := s.uc.ListContracts(s.ctx, ListInput{Page: 0, Size: 5})
	s.Require().NoError(err)
	s.Empty(page.Content)
	s.NotNil(page.Content)
	s.EqualValues(0, page.TotalElements)
	s.Equal(0, page.TotalPages)
	s.False(page.HasNext)
	s.False(page.HasPrevious)
}

func (s *ContractUseCaseSuite) TestListNormalizesPaging() {
	for i := 0; i < 7; i++ {
		_, err := s.create(s.input(i+1, 28, 100_000))
		s.Require().NoError(err)
	}

	page, err := s.uc.ListContracts(s.ctx, ListInput{Page: -3, Size: 0})
	s.Require().NoError(err)
	s.Equal(0, page.Page)
	s.Equal(5, page.Size)
	s.Len(page.Content, 5)
	s.EqualValues(7, page.TotalElements)
	s.Equal(2, page.TotalPages)
	s.True(page.HasNext)
	s.False(page.HasPrevious)

	// newest start date first
	s.True(page.Content[0].StartDate.After(page.Content[1].StartDate))

	last, err := s.uc.ListContracts(s.ctx, ListInput{Page: 1, Size: 5})
	s.Require().NoError(err)
	s.Len(last.Content, 2)
	s.False(last.HasNext)
	s.True(last.HasPrevious)

	big, err := s.uc.ListContracts(s.ctx, ListInput{Size: 1000})
	s.Require().NoError(err)
	s.Equal(100, big.Size)
}

func (s *ContractUseCaseSuite) TestListHugePageIsEmpty() {
	_, err := s.create(s.input(1, 28, 100_000))
	s.Require().NoError(err)

	var page *domain.Page[domain.ContractView]
	s.Require().NotPanics(func() {
		page, err = s.uc.ListContracts(s.ctx, ListInput{Page: math.MaxInt64/5 + 1, Size: 5})
	})
	s.Require().NoError(err)
	s.Empty(page.Content)
	s.EqualValues(1, page.TotalElements)
	s.False(page.HasNext)
	s.True(page.HasPrevious)
}

func (s *ContractUseCaseSuite) TestListFiltersOnDerivedStatus() {
	soon, err := s.create(s.input(1, 28, 100_000))
	s.Require().NoError(err)
	_, err = s.create(s.input(30, 28, 100_000))
	s.Require().NoError(err)

	s.clock.Advance(2 * 24 * time.Hour)

	page, err := s.uc.ListContracts(s.ctx, ListInput{Statuses: []domain.ContractStatus{domain.StatusInProgress}})
	s.Require().NoError(err)
	s.Require().Len(page.Content, 1)
	s.EqualValues(1, page.TotalElements)
	s.Equal(soon.ID, page.Content[0].ID)
	s.Equal(domain.StatusInProgress, page.Content[0].Status)

	pending, err := s.uc.ListContracts(s.ctx, ListInput{Statuses: []domain.ContractStatus{domain.StatusPending}})
	s.Require().NoError(err)
	s.EqualValues(1, pending.TotalElements)
	s.NotEqual(soon.ID, pending.Content[0].ID)
}

func (s *ContractUseCaseSuite) TestListCompanyAndPeriodFilters() {
	in := s.input(10, 28, 100_000)
	in.CompanyID = 2
	north, err := s.create(in)
	s.Require().NoError(err)
	_, err = s.create(s.input(60, 28, 100_000))
	s.Require().NoError(err)

	page, err := s.uc.ListContracts(s.ctx, ListInput{CompanyName: "Northwind"})
	s.Require().NoError(err)
	s.Require().Len(page.Content, 1)
	s.Equal(north.ID, page.Content[0].ID)

	from := domain.AddDays(s.today(), 0)
	to := domain.AddDays(s.today(), 10)
	overlap, err := s.uc.ListContracts(s.ctx, ListInput{From: &from, To: &to})
	s.Require().NoError(err)
	s.Require().Len(overlap.Content, 1)
	s.Equal(north.ID, overlap.Content[0].ID)

	onlyFrom := domain.AddDays(s.today(), 50)
	later, err := s.uc.ListContracts(s.ctx, ListInput{From: &onlyFrom})
	s.Require().NoError(err)
	s.EqualValues(1, later.TotalElements)
}

func (s *ContractUseCaseSuite) TestRefreshStatuses() {
	a, err := s.create(s.input(1, 28, 100_000))
	s.Require().NoError(err)
	b, err := s.create(s.input(0, 28, 100_000))
	s.Require().NoError(err)
	c, err := s.create(s.input(3, 28, 100_000))
	s.Require().NoError(err)
	_, err = s.uc.CancelContract(s.ctx, c.ID)
	s.Require().NoError(err)

	s.clock.Advance(30 * 24 * time.Hour)

	n, err := s.uc.RefreshStatuses(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	storedA, err := s.contracts.GetByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, storedA.Status)

	storedB, err := s.contracts.GetByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, storedB.Status)

	storedC, err := s.contracts.GetByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusCancelled, storedC.Status)

	n, err = s.uc.RefreshStatuses(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *ContractUseCaseSuite) TestTodayFollowsLocation() {
	kst := time.FixedZone("KST", 9*60*60)
	uc := New(Deps{
		Companies: memory.NewCompanyRepository(s.store),
		Products:  memory.NewProductRepository(s.store),
		Contracts: s.contracts,
		Clock:     clock.NewFixed(time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)),
	}, Config{Location: kst})

	// 20:00 UTC is already the 16th in KST, so the 15th lies in the past
	_, err := uc.CreateContract(s.ctx, CreateInput{
		CompanyID: 1,
		ProductID: 1,
		StartDate: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.NewFromInt(50_000),
	})
	s.True(domain.IsDomainError(err, domain.ErrCodeInvalidStartDate))

	view, err := uc.CreateContract(s.ctx, CreateInput{
		CompanyID: 1,
		ProductID: 1,
		StartDate: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.NewFromInt(50_000),
	})
	s.Require().NoError(err)
	s.Equal("CNT-20261016-0001", view.ContractNumber)
	s.Equal(domain.StatusInProgress, view.Status)
}
