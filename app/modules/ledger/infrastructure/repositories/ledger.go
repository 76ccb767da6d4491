package ledgerdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// LedgerDBImpl implements Repository on bun. There is deliberately no update
// or delete: the ledger only grows.
type LedgerDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*LedgerDBImpl)(nil)

func (r *LedgerDBImpl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.DB
}

func (r *LedgerDBImpl) Append(ctx context.Context, db bun.IDB, entry *TabAuditEntry) error {
	if _, err := r.idb(db).NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append audit entry for %s %s: %w", entry.EntityType, entry.EntityID, err)
	}
	return nil
}

func (r *LedgerDBImpl) ListByTournament(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) ([]TabAuditEntry, error) {
	var entries []TabAuditEntry
	err := r.idb(db).NewSelect().
		Model(&entries).
		Where("ae.tournament_id = ?", tournamentID).
		Order("ae.created_at ASC", "ae.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for tournament %s: %w", tournamentID, err)
	}
	return entries, nil
}

func (r *LedgerDBImpl) ListByEntity(ctx context.Context, db bun.IDB, entityType EntityType, entityID uuid.UUID) ([]TabAuditEntry, error) {
	var entries []TabAuditEntry
	err := r.idb(db).NewSelect().
		Model(&entries).
		Where("ae.entity_type = ?", entityType).
		Where("ae.entity_id = ?", entityID).
		Order("ae.created_at ASC", "ae.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for %s %s: %w", entityType, entityID, err)
	}
	return entries, nil
}

// AcquireEntityLock takes a transaction-scoped advisory lock keyed on the
// entity. Works for entities that have no row yet (synthetic byes).
func (r *LedgerDBImpl) AcquireEntityLock(ctx context.Context, db bun.IDB, entityType EntityType, entityID uuid.UUID) error {
	key := fmt.Sprintf("%s:%s", entityType, entityID)
	if _, err := r.idb(db).NewRaw("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", key).Exec(ctx); err != nil {
		return fmt.Errorf("failed to lock entity %s: %w", key, err)
	}
	return nil
}
