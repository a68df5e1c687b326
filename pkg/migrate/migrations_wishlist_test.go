package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maisonnoor/boutique-backend/pkg/migrate"
)

func TestWishlistMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_wishlist_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no wishlist migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS wishlist_items",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_wishlist_owner_product ON wishlist_items(owner_id, product_id)",
		"CREATE TABLE IF NOT EXISTS wishlist_shares",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_wishlist_shares_token",
		"DROP TABLE IF EXISTS wishlist_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
