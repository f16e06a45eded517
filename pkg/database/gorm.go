package database

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type options struct {
	level  logger.LogLevel
	writer io.Writer
}

type Option func(*options)

// WithLogLevel sets the SQL log level by name: silent, error, warn or info.
// Unknown names fall back to warn.
func WithLogLevel(name string) Option {
	return func(o *options) { o.level = ParseLogLevel(name) }
}

// WithWriter redirects SQL logs away from stdout. The CLI uses it so query
// traces never interleave with the chat transcript.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

func ParseLogLevel(name string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "silent", "off":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}

func newLogger(opts ...Option) logger.Interface {
	o := options{level: logger.Warn, writer: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	return logger.New(
		log.New(o.writer, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  o.level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // keep complaint details out of the SQL log
			Colorful:                  o.writer == os.Stdout,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func NewGormDBFromDSN(dsn string, opts ...Option) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger(opts...),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}
