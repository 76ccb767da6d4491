package resultmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating round_results and speaker_results tables...")

		if _, err := db.NewCreateTable().Model((*resultdb.RoundResult)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*resultdb.SpeakerResult)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().
			Model((*resultdb.RoundResult)(nil)).
			Index("idx_round_results_tournament").
			Column("tournament_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().
			Model((*resultdb.SpeakerResult)(nil)).
			Index("idx_speaker_results_tournament").
			Column("tournament_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping round_results and speaker_results tables...")

		if _, err := db.NewDropTable().Model((*resultdb.SpeakerResult)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*resultdb.RoundResult)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
