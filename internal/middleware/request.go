package middleware

import (
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// Middleware wraps a fasthttp handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// RequestObserver receives one observation per completed request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Chain applies middlewares so the first one listed is the outermost.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID makes sure every request carries an X-Request-ID header.
func RequestID() Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID))) == "" {
				ctx.Request.Header.Set(HeaderRequestID, uuid.NewString())
			}
			next(ctx)
		}
	}
}

// RequestLogger logs every request once it completes and reports it to observer.
func RequestLogger(logger *zap.Logger, observer RequestObserver) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			elapsed := time.Since(start)

			status := ctx.Response.StatusCode()
			method := string(ctx.Method())
			route := MatchedRoute(ctx)
			if observer != nil {
				observer.ObserveRequest(method, route, status, elapsed)
			}

			fields := []zap.Field{
				zap.Int("status", status),
				zap.String("method", method),
				zap.String("path", string(ctx.Path())),
				zap.String("route", route),
				zap.Duration("latency", elapsed),
				zap.String("client_ip", ctx.RemoteIP().String()),
				zap.String("request_id", string(ctx.Request.Header.Peek(HeaderRequestID))),
			}
			if query := ctx.QueryArgs().String(); query != "" {
				fields = append(fields, zap.String("query", query))
			}

			switch {
			case status >= fasthttp.StatusInternalServerError:
				logger.Error("request completed", fields...)
			case status >= fasthttp.StatusBadRequest:
				logger.Warn("request completed", fields...)
			default:
				logger.Info("request completed", fields...)
			}
		}
	}
}

// MatchedRoute returns the route pattern the router matched, keeping metric labels bounded.
func MatchedRoute(ctx *fasthttp.RequestCtx) string {
	if route, ok := ctx.UserValue(router.MatchedRoutePathParam).(string); ok && route != "" {
		return route
	}
	return "unmatched"
}
