package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/adcontract/api/transport"
	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/pkg/httpcontext"
	appLogger "github.com/fastygo/adcontract/pkg/logger"
)

const internalErrorMessage = "an unexpected error occurred"

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	status, code := mapError(err)

	body := transport.ErrorBody{Message: internalErrorMessage}
	var dErr *domain.Error
	if code != domain.ErrCodeInternal && errors.As(err, &dErr) {
		body.Message = dErr.Message
		body.Details = dErr.Details
	}

	log := appLogger.WithRequestID(stdCtx, h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("code", string(code)), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("code", string(code)), zap.Error(err))
	}

	h.respondJSON(ctx, status, transport.NewError(string(code), body, transport.ErrorMeta{
		Timestamp: time.Now().UTC(),
		Status:    status,
	}))
}

// mapError translates a domain error code into an HTTP status.
func mapError(err error) (int, domain.ErrorCode) {
	code := domain.CodeOf(err)
	switch {
	case strings.HasSuffix(string(code), "_NOT_FOUND"):
		return http.StatusNotFound, code
	case code == domain.ErrCodeDuplicateRequest, code == domain.ErrCodeInvalidState:
		return http.StatusConflict, code
	case code == domain.ErrCodeValidation, strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest, code
	default:
		return http.StatusInternalServerError, domain.ErrCodeInternal
	}
}
