package db

import (
	"context"
	"time"

	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	"github.com/AlibekovAA/album-catalog/internal/observability/metrics"
)

type poolStats struct {
	acquired int64
	idle     int64
	max      int64
	total    int64
}

// StartPoolMetrics publishes connection pool gauges until ctx is done.
func (s *Store) StartPoolMetrics(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = constants.DBPoolMetricsInterval
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				publishPoolStats(s.stats())
			}
		}
	}()
}

func (s *Store) stats() poolStats {
	if s.Pool != nil {
		st := s.Pool.Stat()
		return poolStats{
			acquired: int64(st.AcquiredConns()),
			idle:     int64(st.IdleConns()),
			max:      int64(st.MaxConns()),
			total:    int64(st.TotalConns()),
		}
	}

	st := s.SQL.Stats()
	return poolStats{
		acquired: int64(st.InUse),
		idle:     int64(st.Idle),
		max:      int64(st.MaxOpenConnections),
		total:    int64(st.OpenConnections),
	}
}

func publishPoolStats(st poolStats) {
	metrics.DBPoolAcquiredConnections.Set(float64(st.acquired))
	metrics.DBPoolIdleConnections.Set(float64(st.idle))
	metrics.DBPoolMaxConnections.Set(float64(st.max))
	metrics.DBPoolTotalConnections.Set(float64(st.total))
}
