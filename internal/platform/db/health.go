package db

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// HealthCheck describes how to check one storage backend.
type HealthCheck struct {
	Driver string
	Ping   func(ctx context.Context) error
	Stats  func() *PoolStats
}

// PgHealthCheck pings a pgx pool.
func PgHealthCheck(pool *pgxpool.Pool) HealthCheck {
	return HealthCheck{
		Driver: "postgres",
		Ping:   pool.Ping,
		Stats: func() *PoolStats {
			stat := pool.Stat()
			return &PoolStats{
				TotalConns:    stat.TotalConns(),
				IdleConns:     stat.IdleConns(),
				AcquiredConns: stat.AcquiredConns(),
				MaxConns:      stat.MaxConns(),
			}
		},
	}
}

// GormHealthCheck pings the sql.DB underneath a gorm handle.
func GormHealthCheck(gdb *gorm.DB) HealthCheck {
	return HealthCheck{
		Driver: "sqlite",
		Ping: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return fmt.Errorf("sqlite handle: %w", err)
			}
			return sqlDB.PingContext(ctx)
		},
		Stats: func() *PoolStats {
			sqlDB, err := gdb.DB()
			if err != nil {
				return nil
			}
			stat := sqlDB.Stats()
			return &PoolStats{
				TotalConns:    int32(stat.OpenConnections),
				IdleConns:     int32(stat.Idle),
				AcquiredConns: int32(stat.InUse),
				MaxConns:      int32(stat.MaxOpenConnections),
			}
		},
	}
}

// HealthHandler returns a handler for the database health check endpoint.
func HealthHandler(check HealthCheck) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		body := map[string]interface{}{"driver": check.Driver}
		if check.Stats != nil {
			body["pool"] = check.Stats()
		}

		if err := check.Ping(ctx); err != nil {
			body["status"] = "unhealthy"
			body["error"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}

		body["status"] = "healthy"
		return c.JSON(http.StatusOK, body)
	}
}
