package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/adcontract/api/transport"
	"github.com/fastygo/adcontract/pkg/httpcontext"
	companyUC "github.com/fastygo/adcontract/usecase/company"
)

type CompanyHandler struct {
	baseHandler
	uc *companyUC.UseCase
}

func NewCompanyHandler(uc *companyUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List companies
// @Tags companies
// @Router /api/v1/companies [get]
func (h *CompanyHandler) ListCompanies(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	companies, err := h.uc.ListCompanies(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewCompanyResponses(companies))
}

// @Summary Search companies by name
// @Tags companies
// @Router /api/v1/companies/search [get]
func (h *CompanyHandler) SearchCompanies(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	companies, err := h.uc.SearchCompanies(stdCtx, string(ctx.QueryArgs().Peek("keyword")))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewCompanyResponses(companies))
}

// @Summary Get company
// @Tags companies
// @Router /api/v1/companies/{id} [get]
func (h *CompanyHandler) GetCompany(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := transport.ParseID(ctx.UserValue("id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	company, err := h.uc.GetCompany(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewCompanyResponse(*company))
}
