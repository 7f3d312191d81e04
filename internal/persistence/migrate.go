package persistence

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"atsresume/internal/obslog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one embedded, versioned schema change.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationManager applies pending migrations against a DB, tracking what's
// already run in a schema_migrations table — same shape as the teacher's
// manager, generalized from Postgres to MySQL DDL.
type MigrationManager struct {
	db *DB
}

func NewMigrationManager(db *DB) *MigrationManager {
	return &MigrationManager{db: db}
}

// Migrate applies every migration not yet recorded in schema_migrations, in
// version order.
func (m *MigrationManager) Migrate(ctx context.Context) error {
	log := obslog.With("persistence.migrate")

	if err := m.ensureMigrationsTable(ctx); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("loading applied migrations: %w", err)
	}

	available, err := m.loadMigrations()
	if err != nil {
		return fmt.Errorf("loading migration files: %w", err)
	}

	pending := pendingMigrations(available, applied)
	if len(pending) == 0 {
		log.Info().Msg("no pending migrations")
		return nil
	}

	for _, mig := range pending {
		if err := m.apply(ctx, mig); err != nil {
			return fmt.Errorf("applying migration %d: %w", mig.Version, err)
		}
		log.Info().Int("version", mig.Version).Str("description", mig.Description).Msg("migration applied")
	}
	return nil
}

func (m *MigrationManager) ensureMigrationsTable(ctx context.Context) error {
	_, err := m.db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
	`)
	return err
}

func (m *MigrationManager) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.db.conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (m *MigrationManager) loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, description, ok := parseMigrationFilename(entry.Name())
		if !ok {
			continue
		}
		contents, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{Version: version, Description: description, SQL: string(contents)})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// parseMigrationFilename expects "NNNN_description.sql".
func parseMigrationFilename(name string) (version int, description string, ok bool) {
	trimmed := strings.TrimSuffix(name, ".sql")
	parts := strings.SplitN(trimmed, "_", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	return v, strings.ReplaceAll(parts[1], "_", " "), true
}

func pendingMigrations(available []Migration, applied map[int]bool) []Migration {
	var pending []Migration
	for _, mig := range available {
		if !applied[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending
}

func (m *MigrationManager) apply(ctx context.Context, mig Migration) error {
	tx, err := m.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(mig.SQL) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing statement: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
		mig.Version, mig.Description,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// splitStatements strips "--" comment lines, then splits on ";" — the
// embedded migration files are hand-written DDL with one statement per
// block, never containing a semicolon inside a string literal.
func splitStatements(sqlText string) []string {
	var withoutComments strings.Builder
	for _, line := range strings.Split(sqlText, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		withoutComments.WriteString(line)
		withoutComments.WriteByte('\n')
	}

	var statements []string
	for _, raw := range strings.Split(withoutComments.String(), ";") {
		stmt := strings.TrimSpace(raw)
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}
