package db

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storefront-checkout/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestDialectorForRequiresDSNOrSQLite(t *testing.T) {
	if _, err := dialectorFor(config.DBConfig{}); err == nil {
		t.Fatal("expected missing dsn error")
	}
	dialector, err := dialectorFor(config.DBConfig{UseSQLite: true, SQLitePath: "file::memory:"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dialector.Name() != "sqlite" {
		t.Fatalf("expected sqlite dialector, got %s", dialector.Name())
	}
	dialector, err = dialectorFor(config.DBConfig{DSN: "postgres://localhost/storefront"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dialector.Name() != "postgres" {
		t.Fatalf("expected postgres dialector, got %s", dialector.Name())
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: payment_transactions.order_id"), "") {
		t.Fatal("expected sqlite unique violation")
	}
	if !IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "vouchers_code_key"`), "vouchers_code_key") {
		t.Fatal("expected postgres unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil is not a violation")
	}
}
