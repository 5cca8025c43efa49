package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
	"github.com/AlibekovAA/album-catalog/internal/common/httpmetrics"
	"github.com/AlibekovAA/album-catalog/internal/common/logger"
	"github.com/AlibekovAA/album-catalog/internal/observability/metrics"
)

// ErrorPageRenderer draws the HTML error page.
type ErrorPageRenderer interface {
	RenderError(w http.ResponseWriter, r *http.Request, status int, message string)
}

type ErrorHandler struct {
	log   *logger.Logger
	pages ErrorPageRenderer
}

func NewErrorHandler(log *logger.Logger, pages ErrorPageRenderer) *ErrorHandler {
	return &ErrorHandler{log: log, pages: pages}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()
	traceID := getTraceIDFromContext(ctx)

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		h.handleDomainError(w, r, domainErr, traceID)
		return
	}

	h.log.WithFields(ctx, logger.Fields{
		"error":  err.Error(),
		"action": "unhandled_error",
	}).Errorf("unhandled error: %v", err)

	countHTTPError(r, http.StatusInternalServerError)
	h.write(w, r, http.StatusInternalServerError, CodeUnknown, "internal server error", traceID)
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, err commonerrors.DomainError, traceID string) {
	status := h.Observe(r, err)
	countHTTPError(r, status)

	// internal causes are never shown to the visitor
	message := err.Message()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}
	h.write(w, r, status, err.Code(), message, traceID)
}

// Observe logs and counts a domain error without writing a response, for
// handlers that answer it with a page of their own.
func (h *ErrorHandler) Observe(r *http.Request, err commonerrors.DomainError) int {
	ctx := r.Context()
	status := err.HTTPStatus()

	fields := logger.Fields{
		"error_code": err.Code(),
		"category":   string(err.Category()),
		"status":     status,
		"action":     "domain_error",
	}
	if status >= http.StatusInternalServerError {
		h.log.WithFields(ctx, fields).Errorf("domain error: %s", err.Error())
	} else if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(ctx, fields).Debugf("domain error: %s", err.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(err.Category()),
		err.Code(),
		strconv.Itoa(status),
	).Inc()

	return status
}

// NotFound is the router's fallback for unknown paths.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	countHTTPError(r, http.StatusNotFound)
	h.write(w, r, http.StatusNotFound, CodeNotFound, "page not found", getTraceIDFromContext(r.Context()))
}

func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	countHTTPError(r, http.StatusMethodNotAllowed)
	h.write(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", getTraceIDFromContext(r.Context()))
}

func (h *ErrorHandler) write(w http.ResponseWriter, r *http.Request, status int, code, message, traceID string) {
	if traceID != "" {
		w.Header().Set(traceIDHeader, traceID)
	}
	if h.pages == nil || wantsJSON(r) {
		WriteErrorEnvelope(w, status, code, message, nil, traceID)
		return
	}
	h.pages.RenderError(w, r, status, message)
}

func countHTTPError(r *http.Request, status int) {
	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()
}

func getTraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, ok := ctx.Value(constants.TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
