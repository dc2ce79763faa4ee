package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/adcontract/api/transport"
	"github.com/fastygo/adcontract/pkg/httpcontext"
	productUC "github.com/fastygo/adcontract/usecase/product"
)

type ProductHandler struct {
	baseHandler
	uc *productUC.UseCase
}

func NewProductHandler(uc *productUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List products
// @Tags products
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	products, err := h.uc.ListProducts(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewProductResponses(products))
}

// @Summary Get product
// @Tags products
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, err := transport.ParseID(ctx.UserValue("id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	product, err := h.uc.GetProduct(stdCtx, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewProductResponse(*product))
}
