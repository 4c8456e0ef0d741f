package database

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agora/server/internal/infra/config"
	"github.com/agora/server/internal/model"
)

// New creates a new database connection. Queries slower than
// cfg.SlowQueryThreshold are logged to log at warn level; a nil log
// silences gorm entirely.
func New(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: newLogger(log, cfg.SlowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Get underlying SQL DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

// newLogger bridges gorm's logger onto zap. Only slow queries and errors
// are reported, with parameters elided so cursor positions stay out of logs.
func newLogger(log *zap.Logger, slow time.Duration) logger.Interface {
	if log == nil {
		return logger.Default.LogMode(logger.Silent)
	}
	std, err := zap.NewStdLogAt(log, zapcore.WarnLevel)
	if err != nil {
		return logger.Default.LogMode(logger.Silent)
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             slow,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
}

// keysetIndexes are the composite indexes that keep (created_at, id) page
// seeks off a full sort. Their names match the gorm tags in model.
var keysetIndexes = []struct {
	model any
	name  string
}{
	{&model.Post{}, "idx_posts_keyset"},
	{&model.Post{}, "idx_posts_author_keyset"},
	{&model.Comment{}, "idx_comments_keyset"},
}

type indexChecker interface {
	HasIndex(dst interface{}, name string) bool
}

func missingKeysetIndexes(m indexChecker) []string {
	var missing []string
	for _, idx := range keysetIndexes {
		if !m.HasIndex(idx.model, idx.name) {
			missing = append(missing, idx.name)
		}
	}
	return missing
}

// VerifyKeysetIndexes returns an error naming every keyset index absent
// from the connected schema.
func VerifyKeysetIndexes(db *gorm.DB) error {
	if missing := missingKeysetIndexes(db.Migrator()); len(missing) > 0 {
		return fmt.Errorf("missing keyset indexes: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Migrate creates or updates the feed tables and checks that their keyset
// indexes exist afterwards.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Post{}, &model.Comment{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return VerifyKeysetIndexes(db)
}

// Close closes the database connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
