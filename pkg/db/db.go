package db

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

type DB struct {
	Conn *gorm.DB
}

// Open connects, migrates and tunes a sqlite database. Each call returns an
// independent handle; callers own its lifetime.
func Open(dialector gorm.Dialector) (*DB, error) {
	logger := common.GetLogger()

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

	instance := &DB{Conn: conn}

	if err := instance.Conn.AutoMigrate(&models.KVEntry{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("Database migration completed")

	if err := instance.Conn.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		return nil, fmt.Errorf("set sqlite journal mode: %w", err)
	}

	// sqlite allows a single writer; concurrent writers queue instead of failing.
	if err := instance.Conn.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, fmt.Errorf("set sqlite busy timeout: %w", err)
	}

	return instance, nil
}

func (d *DB) Close() error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func UseSqliteDialector(dbPath string) gorm.Dialector {
	if dbPath == "" {
		dbPath = "safetrack.db"
	}
	return sqlite.Open(dbPath)
}

// UseMemorySqliteDialector returns a private shared-cache memory database.
// Handles opened with the same name see the same data.
func UseMemorySqliteDialector(name string) gorm.Dialector {
	if name == "" {
		name = uuid.NewString()
	}
	return sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}
