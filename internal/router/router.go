package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/adcontract/api/handler"
)

type Handlers struct {
	Contract *apiHandler.ContractHandler
	Company  *apiHandler.CompanyHandler
	Product  *apiHandler.ProductHandler
	Health   *apiHandler.HealthHandler
	// Metrics serves /metrics when set.
	Metrics fasthttp.RequestHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()
	r.SaveMatchedRoutePath = true

	if handlers.Health != nil {
		r.GET("/health", handlers.Health.Check)
	}
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}

	v1 := r.Group("/api/v1")

	v1.POST("/contracts", handlers.Contract.CreateContract)
	v1.GET("/contracts", handlers.Contract.ListContracts)
	v1.GET("/contracts/{id}", handlers.Contract.GetContract)
	v1.POST("/contracts/{id}/cancel", handlers.Contract.CancelContract)

	// Reference data
	v1.GET("/companies", handlers.Company.ListCompanies)
	v1.GET("/companies/search", handlers.Company.SearchCompanies)
	v1.GET("/companies/{id}", handlers.Company.GetCompany)

	v1.GET("/products", handlers.Product.ListProducts)
	v1.GET("/products/{id}", handlers.Product.GetProduct)

	return r
}
