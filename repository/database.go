package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/amirphl/taskserial/models"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite" // pure Go SQLite driver registered as "sqlite"
)

// OpenSQLite opens a SQLite database file through the pure Go driver.
// A single connection is used so writers queue in the pool instead of failing with SQLITE_BUSY;
// lockWait becomes the busy timeout for other processes sharing the file.
func OpenSQLite(path string, lockWait time.Duration, gormConfig *gorm.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate",
		path, lockWait.Milliseconds())

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if gormConfig == nil {
		gormConfig = &gorm.Config{}
	}

	db, err := gorm.Open(&gormsqlite.Dialector{DriverName: "sqlite", Conn: sqlDB}, gormConfig)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm on sqlite database %s: %w", path, err)
	}

	return db, nil
}

// Migrate creates or updates the tables of every persisted model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
