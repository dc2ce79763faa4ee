package product

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/repository"
	"github.com/fastygo/adcontract/repository/memory"
)

type brokenProducts struct {
	repository.ProductRepository
}

func (brokenProducts) GetByID(context.Context, int64) (*domain.Product, error) {
	return nil, errors.New("connection reset")
}

func TestGetProduct(t *testing.T) {
	store := memory.NewStore()
	store.AddProduct(domain.Product{Name: "Search Ads Premium"})
	uc := New(memory.NewProductRepository(store), nil)

	p, err := uc.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Search Ads Premium", p.Name)

	_, err = uc.GetProduct(context.Background(), 2)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeProductNotFound))

	list, err := uc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetProductHidesStoreErrors(t *testing.T) {
	uc := New(brokenProducts{}, nil)
	_, err := uc.GetProduct(context.Background(), 1)
	assert.Equal(t, domain.ErrCodeInternal, domain.CodeOf(err))
}
