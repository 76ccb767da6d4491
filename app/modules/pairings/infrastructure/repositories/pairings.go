package pairingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

var (
	// ErrDuplicateRoundSequence is returned when a round with the same
	// tournament and sequence already exists. Concurrent imports of the same
	// sheet surface here instead of creating duplicate rounds.
	ErrDuplicateRoundSequence = errors.New("round sequence already exists for tournament")

	ErrRoundNotFound   = errors.New("round not found")
	ErrPairingNotFound = errors.New("pairing not found")
)

// PairingDBImpl implements Repository on bun.
type PairingDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*PairingDBImpl)(nil)

func (r *PairingDBImpl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

func (r *PairingDBImpl) CreateRound(ctx context.Context, db bun.IDB, round *Round) error {
	_, err := r.idb(db).NewInsert().Model(round).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tournament %s sequence %d",
				ErrDuplicateRoundSequence, round.TournamentID, round.Sequence)
		}
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

func (r *PairingDBImpl) GetRound(ctx context.Context, db bun.IDB, id sharedtypes.RoundID) (*Round, error) {
	round := new(Round)
	err := r.idb(db).NewSelect().
		Model(round).
		Where("r.id = ?", id.UUID()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRoundNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch round %s: %w", id, err)
	}
	return round, nil
}

func (r *PairingDBImpl) InsertPairing(ctx context.Context, db bun.IDB, pairing *Pairing) error {
	if _, err := r.idb(db).NewInsert().Model(pairing).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert pairing for round %s: %w", pairing.RoundID, err)
	}
	return nil
}

func (r *PairingDBImpl) GetPairing(ctx context.Context, db bun.IDB, id sharedtypes.PairingID) (*Pairing, error) {
	pairing := new(Pairing)
	err := r.idb(db).NewSelect().
		Model(pairing).
		Where("p.id = ?", id.UUID()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrPairingNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch pairing %s: %w", id, err)
	}
	return pairing, nil
}

func (r *PairingDBImpl) ListByRound(ctx context.Context, db bun.IDB, roundID sharedtypes.RoundID) ([]Pairing, error) {
	var pairings []Pairing
	err := r.idb(db).NewSelect().
		Model(&pairings).
		Where("p.round_id = ?", roundID.UUID()).
		Order("p.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairings for round %s: %w", roundID, err)
	}
	return pairings, nil
}

// ListByTournament returns every pairing in the tournament joined to its
// round's sequence and status, ordered deterministically.
func (r *PairingDBImpl) ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]PairingWithRound, error) {
	var pairings []PairingWithRound
	err := r.idb(db).NewSelect().
		Model(&pairings).
		ModelTableExpr("pairings AS p").
		ColumnExpr("p.*").
		ColumnExpr("r.sequence AS round_sequence").
		ColumnExpr("r.status AS round_status").
		Join("JOIN rounds AS r ON r.id = p.round_id").
		Where("r.tournament_id = ?", tournamentID).
		OrderExpr("r.sequence ASC, p.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairings for tournament %s: %w", tournamentID, err)
	}
	return pairings, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}
