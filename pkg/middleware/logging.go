package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sod/pkg/common"
	"sod/pkg/logger"
)

type traceKey string

const traceIdKey traceKey = "traceId"

type Logging struct {
	logger *zap.SugaredLogger
}

func NewLoggingMiddleware(l *zap.SugaredLogger) *Logging {
	return &Logging{
		logger: l,
	}
}

// Attaches a random trace id to the request context.
func (lm Logging) SetupTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		traceId := common.RandStringRunes(8)
		ctx = contextWithTraceId(ctx, traceId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Puts a request-scoped logger carrying the trace id into the context
// so handlers can logger.Log(ctx) without threading a logger around.
func (lm Logging) SetupLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		reqLogger := lm.logger.With(
			"traceId", traceIdFromContext(ctx),
			"method", r.Method,
			"url", r.URL.Path,
		)
		ctx = logger.ToContext(ctx, reqLogger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func contextWithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, traceIdKey, traceId)
}

func traceIdFromContext(ctx context.Context) string {
	if traceId, ok := ctx.Value(traceIdKey).(string); ok {
		return traceId
	}
	return ""
}

func (lm Logging) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Log(r.Context()).Infow("request handled",
			"remote", r.RemoteAddr,
			"took", time.Since(start),
		)
	})
}
