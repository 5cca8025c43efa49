package service

import "github.com/AlibekovAA/album-catalog/internal/observability/metrics"

func incrementAlbumOperation(operation, result string) {
	metrics.AlbumOperationsTotal.WithLabelValues(operation, result).Inc()
}
