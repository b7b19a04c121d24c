package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const GormTxKey contextKey = "gorm_tx"

// SQLiteDSN builds a go-sqlite3 DSN for a database file with foreign keys on.
func SQLiteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// MemorySQLiteDSN builds a DSN for a named, shared in-memory database. The
// database lives as long as one connection to it stays open.
func MemorySQLiteDSN(name string) string {
	name = strings.NewReplacer("/", "_", " ", "_", "?", "_", "&", "_").Replace(name)
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
}

// OpenSQLite opens a gorm handle on SQLite and migrates the given models.
// A single connection is used, so transactions are serialized.
func OpenSQLite(dsn string, logger zerolog.Logger, models ...interface{}) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         &gormLogger{log: logger, slow: 200 * time.Millisecond},
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if len(models) > 0 {
		if err := gdb.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return gdb, nil
}

// GormFromContext retrieves the open gorm transaction from context, or nil.
func GormFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(GormTxKey).(*gorm.DB)
	return tx
}

// Gorm returns the transaction carried by ctx, or base bound to ctx.
func Gorm(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx := GormFromContext(ctx); tx != nil {
		return tx
	}
	return base.WithContext(ctx)
}

// GormTxManager implements TxManager on a gorm handle.
type GormTxManager struct {
	db *gorm.DB
}

func NewGormTxManager(gdb *gorm.DB) *GormTxManager {
	return &GormTxManager{db: gdb}
}

func (m *GormTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if GormFromContext(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, GormTxKey, tx))
	})
}

// gormLogger routes gorm's query log through zerolog. Only failures and slow
// statements are reported.
type gormLogger struct {
	log  zerolog.Logger
	slow time.Duration
}

func (l *gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	l.log.Info().Msgf(msg, args...)
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	l.log.Warn().Msgf(msg, args...)
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	l.log.Error().Msgf(msg, args...)
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error().Err(err).Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("query failed")
	case elapsed > l.slow:
		sql, rows := fc()
		l.log.Warn().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("slow query")
	}
}
