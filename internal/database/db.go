package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures the database backend.
type Options struct {
	Driver string
	// Path is the SQLite database file.
	Path string
	// DSN is the PostgreSQL connection string.
	DSN   string
	Debug bool
}

// Initialize opens the database and runs migrations.
func Initialize(opts Options) (*gorm.DB, error) {
	db, err := Open(opts)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Open connects without migrating.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverSQLite, "":
		dir := filepath.Dir(opts.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dialector = sqlite.Open(opts.Path + "?_foreign_keys=on&_busy_timeout=5000")
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", opts.Driver)
	}

	logMode := logger.Silent
	if opts.Debug {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Driver != DriverPostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		// SQLite is used through a single connection.
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func models() []interface{ TableName() string } {
	return []interface{ TableName() string }{
		&Query{},
		&RawResponse{},
		&ParsedData{},
		&Document{},
	}
}

func Migrate(db *gorm.DB) error {
	var dst []interface{}
	for _, m := range models() {
		dst = append(dst, m)
	}
	if err := db.AutoMigrate(dst...); err != nil {
		return err
	}
	return RunMigrations(db)
}

// MissingTables lists the application tables not present in db.
func MissingTables(db *gorm.DB) []string {
	var missing []string
	for _, m := range models() {
		if !db.Migrator().HasTable(m.TableName()) {
			missing = append(missing, m.TableName())
		}
	}
	return missing
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database is reachable.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
