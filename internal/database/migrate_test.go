package database

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"testing"
)

// requiredColumns lists the columns the poster API repositories query.
// A migration that renames one breaks the API at runtime, not at startup.
var requiredColumns = map[string][]string{
	"users":          {"user_id", "password_digest", "created_at"},
	"poster_history": {"id", "user_id", "prompt_used", "poster_url", "paid", "created_at"},
}

// migrationsDir returns the absolute path to db/migrations/ from the project root.
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	// thisFile is internal/database/migrate_test.go, project root is two dirs up.
	projectRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")
	dir := filepath.Join(projectRoot, "db", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", dir, err)
	}
	return dir
}

// readUpMigrations returns the concatenated contents of all .up.sql files.
func readUpMigrations(t *testing.T) string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(migrationsDir(t), "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing migration files: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no migration files found")
	}

	var b strings.Builder
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("reading %s: %v", f, err)
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String()
}

// TestMigrations_RequiredColumns checks every table the repositories use is
// created with the columns they select.
func TestMigrations_RequiredColumns(t *testing.T) {
	sql := readUpMigrations(t)

	for table, columns := range requiredColumns {
		pattern := regexp.MustCompile(`(?is)CREATE TABLE IF NOT EXISTS ` + table + `\s*\((.*?)\)\s*ENGINE`)
		match := pattern.FindStringSubmatch(sql)
		if match == nil {
			t.Errorf("no CREATE TABLE for %s", table)
			continue
		}
		body := match[1]
		for _, col := range columns {
			if !regexp.MustCompile(`(?m)^\s*` + col + `\s`).MatchString(body) {
				t.Errorf("table %s is missing column %s", table, col)
			}
		}
	}
}

// TestMigrations_DigestWidth guards the digest column against truncation:
// a hex SHA-256 digest is exactly 64 characters.
func TestMigrations_DigestWidth(t *testing.T) {
	sql := readUpMigrations(t)
	if !regexp.MustCompile(`password_digest\s+CHAR\(64\)`).MatchString(sql) {
		t.Error("users.password_digest must be CHAR(64)")
	}
}

// TestMigrations_UpDownPairs ensures every .up.sql has a matching .down.sql.
func TestMigrations_UpDownPairs(t *testing.T) {
	dir := migrationsDir(t)
	upFiles, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing up files: %v", err)
	}

	for _, up := range upFiles {
		down := strings.Replace(up, ".up.sql", ".down.sql", 1)
		if _, err := os.Stat(down); err != nil {
			t.Errorf("missing down migration for %s", filepath.Base(up))
		}
	}
}

// TestMigrations_SequentialVersions catches gaps and duplicate prefixes,
// which golang-migrate rejects at startup.
func TestMigrations_SequentialVersions(t *testing.T) {
	upFiles, err := filepath.Glob(filepath.Join(migrationsDir(t), "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing up files: %v", err)
	}
	sort.Strings(upFiles)

	for i, f := range upFiles {
		want := fmt.Sprintf("%06d_", i+1)
		if !strings.HasPrefix(filepath.Base(f), want) {
			t.Errorf("migration %s: expected prefix %s", filepath.Base(f), want)
		}
	}
}
