package repository

import (
	"fmt"

	"github.com/singnet/snet-marketplace-service-sub002/internal/config"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 禁用 GORM 的默认日志输出
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true, // 禁用复数表名
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate 自动迁移所有表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.BlockNumberMarker{},
		&model.Organization{},
		&model.OrgGroup{},
		&model.Service{},
		&model.ServiceMetadata{},
		&model.ServiceGroup{},
		&model.ServiceEndpoint{},
		&model.ServiceTag{},
		&model.ServiceMedia{},
		&model.Channel{},
		&model.EventSubscription{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 原始事件按事件族分表，表结构相同
	for _, family := range model.AllEventFamilies() {
		table := family.TableName()
		if err := db.Table(table).AutoMigrate(&model.RawEvent{}); err != nil {
			return fmt.Errorf("failed to migrate table %s: %w", table, err)
		}
		// (block_num, tx_hash, log_index) 唯一标识一条链上日志
		stmt := fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS uk_%s_block_tx_log ON %s (block_num, tx_hash, log_index)",
			table, table)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create unique index on %s: %w", table, err)
		}
	}

	return nil
}
