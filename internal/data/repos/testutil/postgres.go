package testutil

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/awareness-backend/internal/data/db"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// PostgresDB connects to TEST_POSTGRES_DSN inside a fresh schema that is dropped when the
// test ends. Row locks and concurrent transactions behave as in production here, unlike
// the SQLite database from DB. The test is skipped when the variable is unset.
func PostgresDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		tb.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}

	admin, err := openPostgres(dsn)
	if err != nil {
		tb.Fatalf("open postgres: %v", err)
	}
	schema := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := admin.Exec(fmt.Sprintf(`CREATE SCHEMA "%s"`, schema)).Error; err != nil {
		tb.Fatalf("create schema: %v", err)
	}

	gdb, err := openPostgres(withSearchPath(dsn, schema))
	if err != nil {
		tb.Fatalf("open schema connection: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(20)

	tb.Cleanup(func() {
		_ = sqlDB.Close()
		_ = admin.Exec(fmt.Sprintf(`DROP SCHEMA IF EXISTS "%s" CASCADE`, schema)).Error
		if adminSQL, err := admin.DB(); err == nil {
			_ = adminSQL.Close()
		}
	})

	if err := db.Migrate(gdb); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return gdb
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
}

// withSearchPath pins every pooled connection to schema. Both URL and key=value DSNs are accepted.
func withSearchPath(dsn, schema string) string {
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err == nil {
			q := u.Query()
			q.Set("search_path", schema)
			u.RawQuery = q.Encode()
			return u.String()
		}
	}
	return dsn + " search_path=" + schema
}
