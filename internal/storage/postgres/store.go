package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"maily/backend/internal/domain"
)

// Store 基于 GORM 的 SQL 存储实现（PostgreSQL / MySQL / SQLite）
type Store struct {
	db *gorm.DB
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig 默认连接池配置
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Open 根据数据库类型创建存储实例
func Open(dbType, dsn string, pool PoolConfig) (*Store, error) {
	switch dbType {
	case "postgres", "postgresql":
		return NewStoreWithDialector(postgres.Open(dsn), pool)
	case "mysql":
		return NewStoreWithDialector(mysql.Open(dsn), pool)
	case "sqlite":
		return NewStoreWithDialector(sqlite.Open(dsn), pool)
	default:
		return nil, fmt.Errorf("unsupported database type: %s (supported: postgres, mysql, sqlite)", dbType)
	}
}

// NewStore 创建 PostgreSQL 存储实例
func NewStore(dsn string) (*Store, error) {
	return NewStoreWithDialector(postgres.Open(dsn), DefaultPoolConfig())
}

// NewSQLiteStore 创建 SQLite 存储实例，":memory:" 用于测试
func NewSQLiteStore(dsn string) (*Store, error) {
	pool := DefaultPoolConfig()
	// SQLite 内存库每个连接都是独立的数据库
	pool.MaxOpenConns = 1
	pool.MaxIdleConns = 1
	pool.ConnMaxLifetime = 0
	return NewStoreWithDialector(sqlite.Open(dsn), pool)
}

// NewStoreWithDialector 使用指定的GORM dialector创建存储实例
func NewStoreWithDialector(dialector gorm.Dialector, pool PoolConfig) (*Store, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // 静默模式
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true, // 唯一约束冲突转换为 gorm.ErrDuplicatedKey
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	store := &Store{db: db}

	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Migrate 自动迁移数据库表结构
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&domain.SubscriptionGroup{},
		&domain.Sequence{},
		&domain.Mailing{},
		&domain.Subscriber{},
		&domain.AggregatedSubscription{},
		&domain.SequenceSubscription{},
	)
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health 检查数据库连接
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Stats 返回连接池统计信息（用于监控）
func (s *Store) Stats() (open, inUse int) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return 0, 0
	}
	stats := sqlDB.Stats()
	return stats.OpenConnections, stats.InUse
}

// notFound 将 gorm.ErrRecordNotFound 转换为领域错误
func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// duplicated 将唯一约束冲突转换为领域错误
func duplicated(err error, target error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return target
	}
	return err
}
