package resultdb

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
	// ErrDuplicateResult is returned when a pairing already has a result.
	// A stored result is only ever superseded through the override ledger.
	ErrDuplicateResult = errors.New("round result already exists for pairing")

	ErrResultNotFound = errors.New("round result not found")
)

// ResultDBImpl implements Repository on bun.
type ResultDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*ResultDBImpl)(nil)

func (r *ResultDBImpl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

func (r *ResultDBImpl) InsertRoundResult(ctx context.Context, db bun.IDB, result *RoundResult) error {
	_, err := r.idb(db).NewInsert().Model(result).Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return fmt.Errorf("%w: %s", ErrDuplicateResult, result.PairingID)
		}
		return fmt.Errorf("failed to insert round result for pairing %s: %w", result.PairingID, err)
	}
	return nil
}

func (r *ResultDBImpl) InsertSpeakerResults(ctx context.Context, db bun.IDB, results []SpeakerResult) error {
	if len(results) == 0 {
		return nil
	}
	if _, err := r.idb(db).NewInsert().Model(&results).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert speaker results for pairing %s: %w", results[0].PairingID, err)
	}
	return nil
}

func (r *ResultDBImpl) GetRoundResultByPairing(ctx context.Context, db bun.IDB, pairingID sharedtypes.PairingID) (*RoundResult, error) {
	result := new(RoundResult)
	err := r.idb(db).NewSelect().
		Model(result).
		Where("rr.pairing_id = ?", pairingID.UUID()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: pairing %s", ErrResultNotFound, pairingID)
		}
		return nil, fmt.Errorf("failed to fetch round result for pairing %s: %w", pairingID, err)
	}
	return result, nil
}

func (r *ResultDBImpl) GetSpeakerResult(ctx context.Context, db bun.IDB, pairingID sharedtypes.PairingID, registrationID sharedtypes.RegistrationID) (*SpeakerResult, error) {
	result := new(SpeakerResult)
	err := r.idb(db).NewSelect().
		Model(result).
		Where("sr.pairing_id = ?", pairingID.UUID()).
		Where("sr.registration_id = ?", registrationID.UUID()).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no speaker result for registration %s in pairing %s",
				ErrResultNotFound, registrationID, pairingID)
		}
		return nil, fmt.Errorf("failed to fetch speaker result for pairing %s: %w", pairingID, err)
	}
	return result, nil
}

func (r *ResultDBImpl) ListRoundResults(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]RoundResult, error) {
	var rrs []RoundResult
	err := r.idb(db).NewSelect().
		Model(&rrs).
		Where("rr.tournament_id = ?", tournamentID).
		Order("rr.created_at ASC", "rr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list round results for tournament %s: %w", tournamentID, err)
	}
	return rrs, nil
}

func (r *ResultDBImpl) ListSpeakerResults(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]SpeakerResult, error) {
	var srs []SpeakerResult
	err := r.idb(db).NewSelect().
		Model(&srs).
		Where("sr.tournament_id = ?", tournamentID).
		Order("sr.created_at ASC", "sr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list speaker results for tournament %s: %w", tournamentID, err)
	}
	return srs, nil
}
