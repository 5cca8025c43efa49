package http

import (
	"net/http"

	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	"github.com/AlibekovAA/album-catalog/internal/common/httpmetrics"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
)

// BuildBaseHandler wraps the application router with the middleware every
// request passes through, outermost first.
func BuildBaseHandler(log *logger.Logger, errors *ErrorHandler, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log, errors)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware
	csp := ContentSecurityPolicyMiddleware("")

	return securityHeaders(csp(traceID(recovery(maxRequestSize(metrics.Wrap(handler))))))
}
