package pairingmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rounds and pairings tables...")

		if _, err := db.NewCreateTable().Model((*pairingdb.Round)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// Duplicate imports of the same round sequence must fail at the
		// database, not in application code.
		if _, err := db.NewCreateIndex().
			Model((*pairingdb.Round)(nil)).
			Index("uq_rounds_tournament_sequence").
			Unique().
			Column("tournament_id", "sequence").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateTable().Model((*pairingdb.Pairing)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().
			Model((*pairingdb.Pairing)(nil)).
			Index("idx_pairings_round").
			Column("round_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rounds and pairings tables...")

		if _, err := db.NewDropTable().Model((*pairingdb.Pairing)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*pairingdb.Round)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
