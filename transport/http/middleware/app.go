package middleware

import (
	"net/http"
	"rosariello/config"
	"rosariello/infras/otel"
	"rosariello/shared/cache"
	"rosariello/shared/constant"
	"time"

	"github.com/rs/zerolog/log"
)

// App carries the cross-cutting middleware applied to every route.
type App interface {
	Tracing(http.Handler) http.Handler
	RateLimit() func(http.Handler) http.Handler
}

type appMiddleware struct {
	config *config.Config
	cache  cache.RedisCache
	otel   otel.Otel
}

func NewAppMiddleware(cfg *config.Config, redisCache cache.RedisCache, otl otel.Otel) App {
	return &appMiddleware{
		config: cfg,
		cache:  redisCache,
		otel:   otl,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Tracing opens a span for the request and logs its outcome.
func (a *appMiddleware) Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := a.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, r.Method+" "+r.URL.Path)
		defer scope.End()

		scope.SetAttributes(map[string]any{
			"http.method": r.Method,
			"http.path":   r.URL.Path,
			"client.ip":   a.getClientIP(r),
		})

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(ctx))

		scope.SetAttribute("http.status_code", rec.status)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
