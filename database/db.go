// Package database opens the relational store backing the campus panel and
// migrates its schema.
package database

import (
	"errors"
	"log"

	"github.com/usjp/campus-panel/config"
	"github.com/usjp/campus-panel/database/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

func initModels(db *gorm.DB) error {
	// parents before children so foreign keys resolve
	models := []any{
		&model.User{},
		&model.Profile{},
		&model.Zone{},
		&model.Building{},
		&model.Division{},
		&model.Task{},
		&model.Subtask{},
		&model.AuditLog{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// Open connects to the configured database and migrates the schema.
func Open(dbConfig *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	if err := dbConfig.EnsureDirectoryExists(); err != nil {
		return nil, err
	}

	var gormLogger logger.Interface
	if debug {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	}

	var dialector gorm.Dialector
	if dbConfig.IsPostgreSQL() {
		dialector = postgres.Open(dbConfig.GetDSN())
	} else {
		dialector = sqlite.Open(dbConfig.GetDSN())
	}

	conn, err := gorm.Open(dialector, c)
	if err != nil {
		return nil, err
	}

	if dbConfig.IsSQLite() {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		// one writer at a time; sqlite serializes the uniqueness checks
		sqlDB.SetMaxOpenConns(1)
		if _, err := sqlDB.Exec("PRAGMA temp_store = MEMORY;"); err != nil {
			return nil, err
		}
	}

	if err := initModels(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// InitDB opens the database and installs it as the process-wide handle.
func InitDB(dbConfig *config.DatabaseConfig, debug bool) error {
	conn, err := Open(dbConfig, debug)
	if err != nil {
		return err
	}
	db = conn
	return nil
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	if db.Dialector.Name() == "sqlite" {
		if err := Checkpoint(); err != nil {
			log.Printf("error executing checkpoint: %v", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports a unique constraint violation. Requires the
// TranslateError option set in Open.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func Checkpoint() error {
	// Update WAL
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
