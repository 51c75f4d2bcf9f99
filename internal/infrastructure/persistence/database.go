package persistence

import (
	"fmt"
	"time"

	"github.com/fooderp/backend/internal/domain/catalog"
	"github.com/fooderp/backend/internal/domain/inventory"
	"github.com/fooderp/backend/internal/domain/partner"
	"github.com/fooderp/backend/internal/domain/sales"
	"github.com/fooderp/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection
type Database struct {
	DB *gorm.DB
}

// NewDatabase creates a new database connection with the given configuration
func NewDatabase(cfg *config.DatabaseConfig, logger gormlogger.Interface) (*Database, error) {
	if logger == nil {
		logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// Migrate creates or updates the schema for all persisted aggregates.
// The composite unique index on (tenant_id, order_number) cannot be
// declared through struct tags on the embedded tenant field, so it is
// created here; it is what makes order numbers unique per organization.
func (d *Database) Migrate() error {
	if err := d.DB.AutoMigrate(
		&partner.Customer{},
		&catalog.Product{},
		&inventory.StockLevel{},
		&sales.SalesOrder{},
		&sales.SalesOrderLine{},
		&sales.ImportRecord{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	if err := d.DB.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_orders_tenant_order_number ON sales_orders (tenant_id, order_number)",
	).Error; err != nil {
		return fmt.Errorf("failed to create order number index: %w", err)
	}
	if err := d.DB.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_order_lines_order_line_number ON sales_order_lines (order_id, line_number)",
	).Error; err != nil {
		return fmt.Errorf("failed to create line number index: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
