package rostermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating registrations table...")

		if _, err := db.NewCreateTable().Model((*rosterdb.Registration)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().
			Model((*rosterdb.Registration)(nil)).
			Index("idx_registrations_tournament").
			Column("tournament_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping registrations table...")

		if _, err := db.NewDropTable().Model((*rosterdb.Registration)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
