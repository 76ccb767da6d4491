package rosterdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// ErrRegistrationNotFound is returned when a registration id has no roster row.
var ErrRegistrationNotFound = errors.New("registration not found")

// RosterDBImpl implements Repository on bun.
type RosterDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*RosterDBImpl)(nil)

func (r *RosterDBImpl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

func (r *RosterDBImpl) GetByID(ctx context.Context, db bun.IDB, id sharedtypes.RegistrationID) (*Registration, error) {
	reg := new(Registration)
	err := r.idb(db).NewSelect().
		Model(reg).
		Where("reg.id = ?", id.UUID()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRegistrationNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch registration %s: %w", id, err)
	}
	return reg, nil
}

func (r *RosterDBImpl) ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]Registration, error) {
	var regs []Registration
	err := r.idb(db).NewSelect().
		Model(&regs).
		Where("reg.tournament_id = ?", tournamentID).
		Order("reg.display_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %s: %w", tournamentID, err)
	}
	return regs, nil
}

// IncrementSideCounts bumps the advisory aff/neg counters after a pairing
// commit. Counts are fairness hints, not authoritative data.
func (r *RosterDBImpl) IncrementSideCounts(ctx context.Context, db bun.IDB, affIDs, negIDs []sharedtypes.RegistrationID) error {
	idb := r.idb(db)

	if len(affIDs) > 0 {
		if _, err := idb.NewUpdate().
			Model((*Registration)(nil)).
			Set("aff_count = aff_count + 1").
			Where("id IN (?)", bun.In(toUUIDs(affIDs))).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to increment aff counts: %w", err)
		}
	}

	if len(negIDs) > 0 {
		if _, err := idb.NewUpdate().
			Model((*Registration)(nil)).
			Set("neg_count = neg_count + 1").
			Where("id IN (?)", bun.In(toUUIDs(negIDs))).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to increment neg counts: %w", err)
		}
	}

	return nil
}

func toUUIDs(ids []sharedtypes.RegistrationID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
