package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const sqliteScheme = "sqlite://"

// OpenDatabase establishes the connection pool described by cfg.
// A DATABASE_URL starting with sqlite:// selects the sqlite driver, anything
// else is handed to postgres with a connect timeout applied.
func OpenDatabase(cfg *Config, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(cfg.DatabaseURL, sqliteScheme) {
		dialector = sqlite.Open(strings.TrimPrefix(cfg.DatabaseURL, sqliteScheme))
	} else {
		dialector = postgres.Open(withConnectTimeout(cfg.DatabaseURL, cfg.DBConnectTimeout))
	}

	logLevel := gormlogger.Warn
	if cfg.IsTest() {
		logLevel = gormlogger.Silent
	}

	db, err := gorm.Open(dialector, GormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	logger.Info("Database connection established",
		zap.String("dialect", db.Dialector.Name()),
		zap.Int("max_open_conns", cfg.DBMaxOpenConns),
	)
	return db, nil
}

// GormConfig is shared by the application and by test databases so both
// store timestamps in UTC and translate driver errors the same way.
func GormConfig(level gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: gormlogger.Default.LogMode(level),
	}
}

// CloseDatabase releases the pool
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// withConnectTimeout adds connect_timeout to a postgres DSN unless present.
// Both URL and key=value DSN forms are accepted.
func withConnectTimeout(dsn string, timeout time.Duration) string {
	if timeout <= 0 || strings.Contains(dsn, "connect_timeout") {
		return dsn
	}
	seconds := int(timeout.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("connect_timeout", fmt.Sprint(seconds))
		u.RawQuery = q.Encode()
		return u.String()
	}
	return fmt.Sprintf("%s connect_timeout=%d", dsn, seconds)
}
