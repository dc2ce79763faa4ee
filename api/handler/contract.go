package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/adcontract/api/transport"
	"github.com/fastygo/adcontract/pkg/httpcontext"
	contractUC "github.com/fastygo/adcontract/usecase/contract"
)

type ContractHandler struct {
	baseHandler
	uc *contractUC.UseCase
}

func NewContractHandler(uc *contractUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create contract
// @Tags contracts
// @Router /api/v1/contracts [post]
func (h *ContractHandler) CreateContract(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	terms, err := transport.DecodeContractRequest(ctx.PostBody())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	created, err := h.uc.CreateContract(stdCtx, contractUC.CreateInput{
		CompanyID: terms.CompanyID,
		ProductID: terms.ProductID,
		StartDate: terms.StartDate,
		EndDate:   terms.EndDate,
		Amount:    terms.Amount,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewContractResponse(*created))
}

// @Summary List contracts
// @Tags contracts
// @Router /api/v1/contracts [get]
func (h *ContractHandler) ListContracts(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	q, err := transport.ParseContractListQuery(ctx.QueryArgs())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	page, err := h.uc.ListContracts(stdCtx, contractUC.ListInput{
		CompanyName: q.CompanyName,
		Statuses:    q.Statuses,
		From:        q.From,
		To:          q.To,
		Page:        q.Page,
		Size:        q.Size,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewContractPage(page))
}

// @Summary Get contract
// @Tags contracts
// @Router /api/v1/contracts/{id} [get]
func (h *ContractHandler) GetContract(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := transport.ParseID(ctx.UserValue("id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	view, err := h.uc.GetContract(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewContractResponse(*view))
}

// @Summary Cancel contract
// @Tags contracts
// @Router /api/v1/contracts/{id}/cancel [post]
func (h *ContractHandler) CancelContract(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := transport.ParseID(ctx.UserValue("id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	view, err := h.uc.CancelContract(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewContractResponse(*view))
}
