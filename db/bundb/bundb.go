package bundb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	standingsdb "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/repositories"
	"github.com/open-forensics/tab-service/config"
)

// DBService bundles the per-module repositories over one connection pool.
type DBService struct {
	RosterDB    *rosterdb.RosterDBImpl
	PairingDB   *pairingdb.PairingDBImpl
	ResultDB    *resultdb.ResultDBImpl
	LedgerDB    *ledgerdb.LedgerDBImpl
	StandingsDB *standingsdb.StandingsDBImpl

	db *bun.DB
}

// GetDB returns the underlying database handle.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Close closes the connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService connects to Postgres and wires the repositories.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	db.RegisterModel(
		(*rosterdb.Registration)(nil),
		(*pairingdb.Round)(nil),
		(*pairingdb.Pairing)(nil),
		(*resultdb.RoundResult)(nil),
		(*resultdb.SpeakerResult)(nil),
		(*ledgerdb.TabAuditEntry)(nil),
		(*standingsdb.ComputedStanding)(nil),
	)

	return &DBService{
		RosterDB:    &rosterdb.RosterDBImpl{DB: db},
		PairingDB:   &pairingdb.PairingDBImpl{DB: db},
		ResultDB:    &resultdb.ResultDBImpl{DB: db},
		LedgerDB:    &ledgerdb.LedgerDBImpl{DB: db},
		StandingsDB: &standingsdb.StandingsDBImpl{DB: db},
		db:          db,
	}, nil
}
