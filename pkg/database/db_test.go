package database

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/config"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:20;uniqueIndex"`
}

func TestNewDB_SQLiteAutoMigrate(t *testing.T) {
	cfg := &config.DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"}
	db, err := NewDB(cfg, "error", zap.NewNop())
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db, DriverSQLite, zap.NewNop(), &widget{}); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !db.Migrator().HasTable(&widget{}) {
		t.Fatal("expected widgets table to exist")
	}

	if err := db.Create(&widget{Name: "a"}).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.Create(&widget{Name: "a"}).Error; err == nil {
		t.Error("expected unique index violation")
	}
}

type rota struct {
	ID        uint   `gorm:"primaryKey"`
	Owner     string `gorm:"size:20"`
	Name      string `gorm:"size:20"`
	DeletedAt gorm.DeletedAt
}

func (rota) LiveUniqueIndexes() map[string][]string {
	return map[string][]string{"idx_rota_owner_name": {"owner", "name"}}
}

func TestMigrate_LiveUniqueIndex(t *testing.T) {
	db, err := NewDB(&config.DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"}, "error", zap.NewNop())
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := Migrate(db, DriverSQLite, zap.NewNop(), &rota{}); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// a second run finds the index and leaves it alone
	if err := Migrate(db, DriverSQLite, zap.NewNop(), &rota{}); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	first := &rota{Owner: "acme", Name: "nights"}
	if err := db.Create(first).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.Create(&rota{Owner: "acme", Name: "nights"}).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("live duplicate = %v, want ErrDuplicatedKey", err)
	}
	if err := db.Delete(first).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if err := db.Create(&rota{Owner: "acme", Name: "nights"}).Error; err != nil {
		t.Errorf("name should be free after soft delete: %v", err)
	}
}

func TestLiveUniqueIndexSQL(t *testing.T) {
	sql, err := liveUniqueIndexSQL(DriverMySQL, "idx_x", "things", []string{"a", "b"})
	if err != nil || !strings.Contains(sql, "(a, b, (IF(deleted_at IS NULL, 1, NULL)))") {
		t.Errorf("mysql = %q, %v", sql, err)
	}
	sql, _ = liveUniqueIndexSQL(DriverSQLite, "idx_x", "things", []string{"a", "b"})
	if !strings.HasSuffix(sql, "(a, b) WHERE deleted_at IS NULL") {
		t.Errorf("sqlite = %q", sql)
	}
	if _, err := liveUniqueIndexSQL(DriverPostgres, "idx_x", "things", []string{"a"}); err == nil {
		t.Error("postgres indexes come from the SQL migrations")
	}
}

func TestNewDB_UnknownDriver(t *testing.T) {
	_, err := NewDB(&config.DatabaseConfig{Driver: "oracle"}, "error", zap.NewNop())
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestGormLogLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"debug": gormlogger.Info,
		"info":  gormlogger.Warn,
		"warn":  gormlogger.Warn,
		"error": gormlogger.Error,
		"":      gormlogger.Error,
	}
	for in, want := range cases {
		if got := gormLogLevel(in); got != want {
			t.Errorf("gormLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 || len(entries)%2 != 0 {
		t.Errorf("expected paired up/down migrations, got %d files", len(entries))
	}
}
