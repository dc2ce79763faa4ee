package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fastygo/adcontract/domain"
)

// Store keeps companies, products and contracts in process memory.
// It backs STORAGE_DRIVER=memory and the unit tests.
type Store struct {
	mu        sync.RWMutex
	companies map[int64]domain.Company
	products  map[int64]domain.Product
	contracts map[int64]domain.Contract
	numbers   map[string]int64

	lastCompanyID  int64
	lastProductID  int64
	lastContractID int64
}

func NewStore() *Store {
	return &Store{
		companies: make(map[int64]domain.Company),
		products:  make(map[int64]domain.Product),
		contracts: make(map[int64]domain.Contract),
		numbers:   make(map[string]int64),
	}
}

// AddCompany stores c, assigning an ID when it has none.
func (s *Store) AddCompany(c domain.Company) domain.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.lastCompanyID++
		c.ID = s.lastCompanyID
	} else if c.ID > s.lastCompanyID {
		s.lastCompanyID = c.ID
	}
	s.companies[c.ID] = c
	return c
}

// AddProduct stores p, assigning an ID when it has none.
func (s *Store) AddProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.lastProductID++
		p.ID = s.lastProductID
	} else if p.ID > s.lastProductID {
		s.lastProductID = p.ID
	}
	s.products[p.ID] = p
	return p
}

// Seed loads the same demo reference data the SQL seed migration inserts.
func Seed(s *Store, now time.Time) {
	companies := []domain.Company{
		{CompanyNumber: "C-0001", Name: "Blue Harbor Foods", Type: "ADVERTISER"},
		{CompanyNumber: "C-0002", Name: "Northwind Traders", Type: "ADVERTISER"},
		{CompanyNumber: "C-0003", Name: "Lumen Media Agency", Type: "AGENCY"},
		{CompanyNumber: "C-0004", Name: "Harbor Lights Hotel", Type: "ADVERTISER"},
	}
	for _, c := range companies {
		c.CreatedAt, c.UpdatedAt = now, now
		s.AddCompany(c)
	}
	s.AddProduct(domain.Product{
		Name:        "Search Ads Premium",
		Description: "Top placement on search result pages",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *Store) view(c domain.Contract) domain.ContractView {
	return domain.ContractView{
		Contract: c,
		Company:  s.companies[c.CompanyID],
		Product:  s.products[c.ProductID],
	}
}

func sortCompanies(list []domain.Company) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

func sortProducts(list []domain.Product) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

// sortContracts orders by start date, end date and id, newest first.
func sortContracts(list []domain.ContractView) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.After(b.StartDate)
		}
		if !a.EndDate.Equal(b.EndDate) {
			return a.EndDate.After(b.EndDate)
		}
		return a.ID > b.ID
	})
}

func containsName(name, substring string) bool {
	return substring == "" || strings.Contains(name, substring)
}

func sortByID(list []domain.Contract) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
