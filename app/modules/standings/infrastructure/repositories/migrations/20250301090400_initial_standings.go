package standingsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	standingsdb "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating computed_standings table...")

		if _, err := db.NewCreateTable().Model((*standingsdb.ComputedStanding)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().
			Model((*standingsdb.ComputedStanding)(nil)).
			Index("idx_computed_standings_tournament").
			Column("tournament_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping computed_standings table...")

		_, err := db.NewDropTable().Model((*standingsdb.ComputedStanding)(nil)).IfExists().Exec(ctx)
		return err
	})
}
