package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-checkout/pkg/migrate"
)

func TestCheckoutMigrationsContainSchemas(t *testing.T) {
	cases := map[string][]string{
		"*_create_vouchers.sql": {
			"CREATE TABLE IF NOT EXISTS vouchers",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_vouchers_code",
			"CHECK (discount >= 0)",
			"DROP TABLE IF EXISTS vouchers",
		},
		"*_create_user_addresses.sql": {
			"CREATE TABLE IF NOT EXISTS user_addresses",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_user_addresses_one_primary",
			"DROP TABLE IF EXISTS user_addresses",
		},
		"*_create_payment_methods.sql": {
			"CREATE TABLE IF NOT EXISTS payment_methods",
			"('cod', 'Cash on Delivery', 'cod'",
			"DROP TABLE IF EXISTS payment_methods",
		},
		"*_create_payment_transactions.sql": {
			"CREATE TABLE IF NOT EXISTS payment_transactions",
			"CHECK (gross_amount > 0)",
			"DROP TABLE IF EXISTS payment_transactions",
		},
	}

	for pattern, checks := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) == 0 {
			t.Fatalf("no migration file found for %s", pattern)
		}

		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		content := string(data)

		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", matches[0], sub)
			}
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate shipped migrations: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected error for filename without version")
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Voucher Usage!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_voucher_usage.sql") {
		t.Fatalf("unexpected path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}
