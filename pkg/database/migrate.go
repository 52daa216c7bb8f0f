package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date. PostgreSQL runs the versioned SQL
// migrations; mysql and sqlite fall back to GORM AutoMigrate of models.
func Migrate(db *gorm.DB, driver string, logger *zap.Logger, models ...interface{}) error {
	if driver == DriverPostgres || driver == "" {
		return RunMigrations(db, logger)
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := createLiveUniqueIndexes(db, driver, models...); err != nil {
		return err
	}
	logger.Info("schema auto-migrated", zap.String("driver", driver), zap.Int("models", len(models)))
	return nil
}

// LiveUniqueIndexer is implemented by soft-deleted models whose unique
// columns only hold among rows that are not deleted. AutoMigrate cannot
// express that, so Migrate creates these indexes itself.
type LiveUniqueIndexer interface {
	// LiveUniqueIndexes maps index names to their columns.
	LiveUniqueIndexes() map[string][]string
}

func createLiveUniqueIndexes(db *gorm.DB, driver string, models ...interface{}) error {
	for _, m := range models {
		indexer, ok := m.(LiveUniqueIndexer)
		if !ok {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return fmt.Errorf("parse %T: %w", m, err)
		}
		for name, columns := range indexer.LiveUniqueIndexes() {
			if db.Migrator().HasIndex(m, name) {
				continue
			}
			sql, err := liveUniqueIndexSQL(driver, name, stmt.Table, columns)
			if err != nil {
				return err
			}
			if err := db.Exec(sql).Error; err != nil {
				return fmt.Errorf("create index %s: %w", name, err)
			}
		}
	}
	return nil
}

// liveUniqueIndexSQL sqlite gets a partial index. MySQL has none, so a
// functional key part that is NULL for deleted rows takes them out of the
// uniqueness check.
func liveUniqueIndexSQL(driver, name, table string, columns []string) (string, error) {
	cols := strings.Join(columns, ", ")
	switch driver {
	case DriverSQLite:
		return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s) WHERE deleted_at IS NULL", name, table, cols), nil
	case DriverMySQL:
		return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s, (IF(deleted_at IS NULL, 1, NULL)))", name, table, cols), nil
	default:
		return "", fmt.Errorf("live unique index: unsupported driver %q", driver)
	}
}

// RunMigrations applies every pending embedded migration on PostgreSQL.
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		logger.Warn("migrations left dirty", zap.Uint("version", version))
	} else {
		logger.Info("migrations applied", zap.Uint("version", version))
	}

	return nil
}
