package middleware

import (
	"encoding/json"
	"runtime/debug"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/adcontract/api/transport"
	"github.com/fastygo/adcontract/domain"
)

// Recover turns a panic into a 500 INTERNAL_ERROR response.
func Recover(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("request_id", string(ctx.Request.Header.Peek(HeaderRequestID))),
					zap.String("method", string(ctx.Method())),
					zap.String("path", string(ctx.Path())),
					zap.ByteString("stack", debug.Stack()))

				envelope := transport.NewError(string(domain.ErrCodeInternal),
					transport.ErrorBody{Message: "an unexpected error occurred"},
					transport.ErrorMeta{Timestamp: time.Now().UTC(), Status: fasthttp.StatusInternalServerError})
				body, _ := json.Marshal(envelope)

				ctx.Response.Reset()
				ctx.Response.Header.SetContentType("application/json")
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				ctx.SetBody(body)
			}()
			next(ctx)
		}
	}
}
