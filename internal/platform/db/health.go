package db

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// HealthReport is the body of GET /health/db.
type HealthReport struct {
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	Schema        string     `json:"schema"`
	SchemaVersion int        `json:"schema_version"`
	Pool          *PoolStats `json:"pool"`
}

// HealthHandler pings the database and reports pool statistics along with the
// highest applied migration of schema.
func HealthHandler(pool *pgxpool.Pool, schema string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		report := HealthReport{Status: "healthy", Schema: schema, Pool: GetPoolStats(pool)}

		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, report.fail(err))
		}

		version, err := schemaVersion(ctx, pool, schema)
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, report.fail(err))
		}
		report.SchemaVersion = version

		return c.JSON(http.StatusOK, report)
	}
}

func (r HealthReport) fail(err error) HealthReport {
	r.Status = "unhealthy"
	r.Error = err.Error()
	if r.Pool != nil {
		r.Pool.Healthy = false
	}
	return r
}

func schemaVersion(ctx context.Context, pool *pgxpool.Pool, schema string) (int, error) {
	if !ValidSchema(schema) {
		return 0, fmt.Errorf("invalid schema identifier: %s", schema)
	}
	var v int
	err := pool.QueryRow(ctx, fmt.Sprintf(`SELECT COALESCE(MAX(version), 0) FROM %s._migrations`, schema)).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
