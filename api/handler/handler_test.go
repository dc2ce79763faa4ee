package handler_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/adcontract/api/handler"
	"github.com/fastygo/adcontract/internal/infrastructure/monitor"
	"github.com/fastygo/adcontract/internal/router"
	"github.com/fastygo/adcontract/pkg/clock"
	"github.com/fastygo/adcontract/pkg/httpcontext"
	"github.com/fastygo/adcontract/repository/memory"
	companyUC "github.com/fastygo/adcontract/usecase/company"
	contractUC "github.com/fastygo/adcontract/usecase/contract"
	productUC "github.com/fastygo/adcontract/usecase/product"
)

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  struct {
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta struct {
		Status int `json:"status"`
	} `json:"meta"`
}

type contractBody struct {
	ID                int64  `json:"id"`
	ContractNumber    string `json:"contract_number"`
	Status            string `json:"status"`
	StatusDescription string `json:"status_description"`
	StartDate         string `json:"start_date"`
	Amount            string `json:"amount"`
	Company           struct {
		Name string `json:"name"`
	} `json:"company"`
}

type pageBody struct {
	Content       []contractBody `json:"content"`
	TotalElements int64          `json:"total_elements"`
	Size          int            `json:"size"`
}

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

type HandlerSuite struct {
	suite.Suite
	clock   *clock.Fixed
	handler fasthttp.RequestHandler
	status  staticStatus
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.clock = clock.NewFixed(time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC))
	s.status = staticStatus{PostgreSQL: monitor.Component{Enabled: true, Online: true}}

	store := memory.NewStore()
	memory.Seed(store, s.clock.Now())
	companies := memory.NewCompanyRepository(store)
	products := memory.NewProductRepository(store)
	contracts := memory.NewContractRepository(store)

	adapter := httpcontext.NewAdapter(time.Second)
	contractUseCase := contractUC.New(contractUC.Deps{
		Companies: companies,
		Products:  products,
		Contracts: contracts,
		Clock:     s.clock,
	}, contractUC.Config{})

	s.handler = router.New(router.Handlers{
		Contract: apiHandler.NewContractHandler(contractUseCase, adapter, nil),
		Company:  apiHandler.NewCompanyHandler(companyUC.New(companies, nil), adapter, nil),
		Product:  apiHandler.NewProductHandler(productUC.New(products, nil), adapter, nil),
		Health:   apiHandler.NewHealthHandler(&s.status, adapter, nil),
	}).Handler
}

func (s *HandlerSuite) do(method, uri, body string) (int, envelope) {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBodyString(body)
	}
	s.handler(ctx)

	var env envelope
	s.Require().NoError(json.Unmarshal(ctx.Response.Body(), &env), string(ctx.Response.Body()))
	return ctx.Response.StatusCode(), env
}

func (s *HandlerSuite) create(body string) (int, envelope) {
	return s.do(fasthttp.MethodPost, "/api/v1/contracts", body)
}

const validBody = `{"company_id":1,"product_id":1,"start_date":"2026-10-16","end_date":"2026-11-13","amount":100000}`

func (s *HandlerSuite) TestCreateContract() {
	status, env := s.create(validBody)
	s.Equal(fasthttp.StatusCreated, status)
	s.Equal("success", env.Status)

	var c contractBody
	s.Require().NoError(json.Unmarshal(env.Data, &c))
	s.Equal("CNT-20261015-0001", c.ContractNumber)
	s.Equal("PENDING", c.Status)
	s.NotEmpty(c.StatusDescription)
	s.Equal("2026-10-16", c.StartDate)
	s.Equal("100000", c.Amount)
	s.Equal("Blue Harbor Foods", c.Company.Name)
}

func (s *HandlerSuite) TestCreateDuplicateIsConflict() {
	status, _ := s.create(validBody)
	s.Require().Equal(fasthttp.StatusCreated, status)

	status, env := s.create(validBody)
	s.Equal(fasthttp.StatusConflict, status)
	s.Equal("DUPLICATE_REQUEST", env.Code)
	s.Equal(fasthttp.StatusConflict, env.Meta.Status)

	s.clock.Advance(6 * time.Second)
	status, _ = s.create(validBody)
	s.Equal(fasthttp.StatusCreated, status)
}

func (s *HandlerSuite) TestCreateRuleViolations() {
	cases := map[string]struct {
		body string
		code string
	}{
		"past start":    {`{"company_id":1,"product_id":1,"start_date":"2026-10-14","end_date":"2026-11-30","amount":100000}`, "INVALID_START_DATE"},
		"short period":  {`{"company_id":1,"product_id":1,"start_date":"2026-10-16","end_date":"2026-11-12","amount":100000}`, "INVALID_END_DATE"},
		"small amount":  {`{"company_id":1,"product_id":1,"start_date":"2026-10-16","end_date":"2026-11-13","amount":9999}`, "INVALID_AMOUNT"},
		"large amount":  {`{"company_id":1,"product_id":1,"start_date":"2026-10-16","end_date":"2026-11-13","amount":1000001}`, "INVALID_AMOUNT"},
		"company":       {`{"company_id":99,"product_id":1,"start_date":"2026-10-16","end_date":"2026-11-13","amount":100000}`, "COMPANY_NOT_FOUND"},
		"product":       {`{"company_id":1,"product_id":99,"start_date":"2026-10-16","end_date":"2026-11-13","amount":100000}`, "PRODUCT_NOT_FOUND"},
		"missing field": {`{"company_id":1,"start_date":"2026-10-16","end_date":"2026-11-13","amount":100000}`, "VALIDATION_ERROR"},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			_, env := s.create(tc.body)
			s.Equal("error", env.Status)
			s.Equal(tc.code, env.Code)
		})
	}
}

func (s *HandlerSuite) TestCreateStatusCodes() {
	status, _ := s.create(`{"company_id":1,"product_id":1,"start_date":"2026-10-14","end_date":"2026-11-30","amount":100000}`)
	s.Equal(fasthttp.StatusBadRequest, status)

	status, _ = s.create(`{"company_id":99,"product_id":1,"start_date":"2026-10-16","end_date":"2026-11-13","amount":100000}`)
	s.Equal(fasthttp.StatusNotFound, status)

	status, env := s.create(`{"company_id":"one"`)
	s.Equal(fasthttp.StatusBadRequest, status)
	s.Equal("VALIDATION_ERROR", env.Code)
	s.NotEmpty(env.Error.Details)
}

func (s *HandlerSuite) TestListEmpty() {
	status, env := s.do(fasthttp.MethodGet, "/api/v1/contracts", "")
	s.Equal(fasthttp.StatusOK, status)

	var page pageBody
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.NotNil(page.Content)
	s.Empty(page.Content)
	s.Zero(page.TotalElements)
	s.Equal(5, page.Size)
}

func (s *HandlerSuite) TestListFiltersByStatus() {
	status, _ := s.create(validBody)
	s.Require().Equal(fasthttp.StatusCreated, status)

	_, env := s.do(fasthttp.MethodGet, "/api/v1/contracts?statuses=PENDING,IN_PROGRESS&company_name=Harbor", "")
	var page pageBody
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Len(page.Content, 1)

	_, env = s.do(fasthttp.MethodGet, "/api/v1/contracts?statuses=COMPLETED", "")
	page = pageBody{}
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Empty(page.Content)
}

func (s *HandlerSuite) TestListRejectsUnknownStatus() {
	status, env := s.do(fasthttp.MethodGet, "/api/v1/contracts?statuses=PENDING,PAUSED", "")
	s.Equal(fasthttp.StatusBadRequest, status)
	s.Equal("VALIDATION_ERROR", env.Code)
}

func (s *HandlerSuite) TestGetAndCancel() {
	_, env := s.create(validBody)
	var created contractBody
	s.Require().NoError(json.Unmarshal(env.Data, &created))

	status, _ := s.do(fasthttp.MethodGet, "/api/v1/contracts/1", "")
	s.Equal(fasthttp.StatusOK, status)

	status, env = s.do(fasthttp.MethodPost, "/api/v1/contracts/1/cancel", "")
	s.Equal(fasthttp.StatusOK, status)
	var cancelled contractBody
	s.Require().NoError(json.Unmarshal(env.Data, &cancelled))
	s.Equal("CANCELLED", cancelled.Status)
	s.Equal(created.ContractNumber, cancelled.ContractNumber)
}

func (s *HandlerSuite) TestCancelCompletedIsConflict() {
	s.create(validBody)
	s.clock.Advance(60 * 24 * time.Hour)

	status, env := s.do(fasthttp.MethodPost, "/api/v1/contracts/1/cancel", "")
	s.Equal(fasthttp.StatusConflict, status)
	s.Equal("INVALID_STATE", env.Code)
}

func (s *HandlerSuite) TestContractNotFoundAndBadID() {
	status, env := s.do(fasthttp.MethodGet, "/api/v1/contracts/404", "")
	s.Equal(fasthttp.StatusNotFound, status)
	s.Equal("CONTRACT_NOT_FOUND", env.Code)

	status, env = s.do(fasthttp.MethodGet, "/api/v1/contracts/abc", "")
	s.Equal(fasthttp.StatusBadRequest, status)
	s.Equal("VALIDATION_ERROR", env.Code)
}

func (s *HandlerSuite) TestReferenceData() {
	status, env := s.do(fasthttp.MethodGet, "/api/v1/companies/search?keyword=Harbor", "")
	s.Equal(fasthttp.StatusOK, status)
	var companies []struct {
		Name string `json:"name"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &companies))
	s.Len(companies, 2)

	status, _ = s.do(fasthttp.MethodGet, "/api/v1/companies/3", "")
	s.Equal(fasthttp.StatusOK, status)

	status, env = s.do(fasthttp.MethodGet, "/api/v1/products/9", "")
	s.Equal(fasthttp.StatusNotFound, status)
	s.Equal("PRODUCT_NOT_FOUND", env.Code)

	status, _ = s.do(fasthttp.MethodGet, "/api/v1/products", "")
	s.Equal(fasthttp.StatusOK, status)
}

func (s *HandlerSuite) TestHealth() {
	status, env := s.do(fasthttp.MethodGet, "/health", "")
	s.Equal(fasthttp.StatusOK, status)
	s.Equal("success", env.Status)

	s.status.PostgreSQL.Online = false
	status, env = s.do(fasthttp.MethodGet, "/health", "")
	s.Equal(fasthttp.StatusServiceUnavailable, status)
	s.Equal("DEGRADED", env.Code)
}
