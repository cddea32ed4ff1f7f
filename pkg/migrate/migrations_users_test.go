package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shieldscan/shield-backend/pkg/migrate"
)

func TestUsersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_users.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no users migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CHECK (email = LOWER(email))",
		"CHECK (role IN ('SysAdmin', 'ClusterAdmin', 'Developer'))",
		"CHECK (status IN ('active', 'inactive'))",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email",
		"USING GIN (namespaces)",
		"DROP TABLE IF EXISTS users",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
