package persistence

import (
	"reflect"
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	version, description, ok := parseMigrationFilename("0001_init.sql")
	if !ok || version != 1 || description != "init" {
		t.Fatalf("parseMigrationFilename() = (%d, %q, %v)", version, description, ok)
	}
}

func TestParseMigrationFilenameRejectsMalformed(t *testing.T) {
	if _, _, ok := parseMigrationFilename("notversioned.sql"); ok {
		t.Fatal("expected malformed filename to be rejected")
	}
}

func TestSplitStatementsStripsCommentsAndEmpties(t *testing.T) {
	sql := "-- a comment\nCREATE TABLE a (id INT);\n\nCREATE TABLE b (id INT);\n"
	got := splitStatements(sql)
	if len(got) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2: %v", len(got), got)
	}
}

func TestPendingMigrationsFiltersApplied(t *testing.T) {
	available := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}
	applied := map[int]bool{1: true, 3: true}
	got := pendingMigrations(available, applied)
	want := []Migration{{Version: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pendingMigrations() = %v, want %v", got, want)
	}
}
