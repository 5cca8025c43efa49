package service

import (
	"github.com/AlibekovAA/album-catalog/internal/observability/metrics"
)

func incrementUsersRegistered() {
	metrics.UsersRegistered.Inc()
}

func incrementLoginAttempt(result string) {
	metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
}

func incrementUserOperation(operation, result string) {
	metrics.UserOperationsTotal.WithLabelValues(operation, result).Inc()
}
