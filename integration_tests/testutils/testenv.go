package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/migrate"

	_ "github.com/jackc/pgx/v5/stdlib"

	ledgermigrations "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories/migrations"
	pairingmigrations "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories/migrations"
	resultmigrations "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories/migrations"
	rostermigrations "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories/migrations"
	standingsmigrations "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/repositories/migrations"
	"github.com/open-forensics/tab-service/integration_tests/containers"
)

// AllTables lists every table the migrations create, in truncation order.
var AllTables = []string{
	"tab_audit_entries",
	"computed_standings",
	"speaker_results",
	"round_results",
	"pairings",
	"rounds",
	"registrations",
}

// TestEnvironment holds the resources shared by the integration tests of one
// test binary. The container is reaped by testcontainers when the process
// exits.
type TestEnvironment struct {
	Ctx         context.Context
	PgContainer *postgres.PostgresContainer
	DB          *bun.DB
}

var (
	sharedEnv    *TestEnvironment
	sharedEnvErr error
	envOnce      sync.Once
)

// GetTestEnv returns the package-wide test environment, starting the Postgres
// container and running all migrations on first use.
func GetTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()

	envOnce.Do(func() {
		sharedEnv, sharedEnvErr = newTestEnvironment(context.Background())
	})
	if sharedEnvErr != nil {
		t.Fatalf("failed to set up test environment: %v", sharedEnvErr)
	}
	return sharedEnv
}

func newTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, connStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}

	db := bun.NewDB(sqlDB, pgdialect.New())

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestEnvironment{
		Ctx:         ctx,
		PgContainer: pgContainer,
		DB:          db,
	}, nil
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	modules := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"roster", rostermigrations.Migrations},
		{"pairings", pairingmigrations.Migrations},
		{"results", resultmigrations.Migrations},
		{"ledger", ledgermigrations.Migrations},
		{"standings", standingsmigrations.Migrations},
	}

	migrator := migrate.NewMigrator(db, modules[0].migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	for _, m := range modules {
		group, err := migrate.NewMigrator(db, m.migrations).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", m.name, err)
		}
		if group.ID == 0 {
			log.Printf("No %s migrations to run", m.name)
		} else {
			log.Printf("Ran %s migrations group #%d", m.name, group.ID)
		}
	}
	return nil
}

// ResetTables truncates the given tables so each test starts from a clean
// slate. With no arguments it truncates everything.
func ResetTables(ctx context.Context, db *bun.DB, tables ...string) error {
	if len(tables) == 0 {
		tables = AllTables
	}

	query := "TRUNCATE TABLE "
	for i, table := range tables {
		query += fmt.Sprintf("%q", table)
		if i < len(tables)-1 {
			query += ", "
		}
	}
	query += " CASCADE"

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}
