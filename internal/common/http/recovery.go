package http

import (
	"net/http"
	"runtime/debug"

	"github.com/AlibekovAA/album-catalog/internal/common/logger"
	"github.com/AlibekovAA/album-catalog/internal/observability/metrics"
)

func RecoveryMiddleware(log *logger.Logger, errors *ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					metrics.PanicsRecovered.Inc()
					log.WithFields(r.Context(), logger.Fields{"action": "panic_recovered"}).
						Criticalf("panic recovered: %v\n%s", err, debug.Stack())
					errors.write(w, r, http.StatusInternalServerError, CodeUnknown, "internal server error", getTraceIDFromContext(r.Context()))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
