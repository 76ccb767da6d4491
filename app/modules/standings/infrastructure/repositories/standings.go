package standingsdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// StandingsDBImpl implements Repository on bun.
type StandingsDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*StandingsDBImpl)(nil)

func (r *StandingsDBImpl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

func (r *StandingsDBImpl) ReplaceSnapshot(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID, rows []ComputedStanding) error {
	idb := r.idb(db)

	if _, err := idb.NewDelete().
		Model((*ComputedStanding)(nil)).
		Where("tournament_id = ?", tournamentID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear standings for tournament %s: %w", tournamentID, err)
	}

	if len(rows) == 0 {
		return nil
	}
	if _, err := idb.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert standings for tournament %s: %w", tournamentID, err)
	}
	return nil
}

func (r *StandingsDBImpl) GetSnapshot(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]ComputedStanding, error) {
	var rows []ComputedStanding
	err := r.idb(db).NewSelect().
		Model(&rows).
		Where("tournament_id = ?", tournamentID).
		Order("rank ASC").
		OrderExpr("registration_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings for tournament %s: %w", tournamentID, err)
	}
	return rows, nil
}
