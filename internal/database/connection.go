package database

import (
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver used when Driver is "pq"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options describes how to reach the database.
type Options struct {
	Dialect      string // postgres, mysql, sqlite
	DSN          string
	Driver       string // postgres only: pgx (default) or pq
	MaxOpenConns int
	MaxIdleConns int
	Attempts     int
	Debug        bool
}

func dialector(opts Options) (gorm.Dialector, error) {
	switch opts.Dialect {
	case "", "postgres":
		cfg := postgres.Config{DSN: opts.DSN}
		if opts.Driver == "pq" {
			cfg.DriverName = "postgres"
		}
		return postgres.New(cfg), nil
	case "mysql":
		return mysql.Open(opts.DSN), nil
	case "sqlite":
		return sqlite.Open(opts.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database dialect %q", opts.Dialect)
}

// Connect opens the pool, retrying while the database container wakes up.
func Connect(opts Options) (*gorm.DB, error) {
	d, err := dialector(opts)
	if err != nil {
		return nil, err
	}

	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	if opts.Debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var db *gorm.DB
	for i := 0; i < attempts; i++ {
		db, err = gorm.Open(d, cfg)
		if err == nil {
			break
		}
		log.Printf("database connection attempt %d failed, retrying... (%v)", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database after %d attempts: %w", attempts, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	return db, nil
}

// Close releases the pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
