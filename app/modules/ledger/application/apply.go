package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	ledgerevents "github.com/open-forensics/tab-service/app/modules/ledger/events"
	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Entity id conventions: round_result and speaker_result entries are keyed by
// their pairing id (at most one result per pairing), synthetic byes by the
// registration id, registration entries by the registration id, and
// computed_standing entries by the registration id (manual rank) or the
// smaller id of the pair (tiebreaker decision).

// Apply validates an override, serializes against other writers of the same
// entity, appends exactly one audit entry carrying the pre- and post-state,
// and announces the commit. Replaying the same override appends again; the
// ledger never deduplicates.
func (s *LedgerService) Apply(ctx context.Context, override Override) (OverrideOperationResult, error) {
	s.logger.InfoContext(ctx, "Applying override",
		attr.ExtractCorrelationID(ctx),
		attr.String("action", string(override.Action)),
		attr.TournamentID("tournament_id", override.TournamentID),
		attr.UserID("user_id", override.UserID),
	)

	return withTelemetry(s, ctx, "ApplyOverride", func(ctx context.Context) (OverrideOperationResult, error) {
		if err := override.Validate(); err != nil {
			return failOverride(override, err.Error()), nil
		}

		entityType, entityID := resolveEntity(override)

		result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (OverrideOperationResult, error) {
			if err := s.repo.AcquireEntityLock(ctx, db, entityType, entityID); err != nil {
				return OverrideOperationResult{}, err
			}

			prior, err := s.repo.ListByEntity(ctx, db, entityType, entityID)
			if err != nil {
				return OverrideOperationResult{}, err
			}

			oldValue, newValue, reject, err := s.buildSnapshots(ctx, db, override, prior)
			if err != nil {
				return OverrideOperationResult{}, err
			}
			if reject != "" {
				return failOverride(override, reject), nil
			}

			entry := &ledgerdb.TabAuditEntry{
				ID:           uuid.New(),
				TournamentID: override.TournamentID,
				Action:       override.Action,
				EntityType:   entityType,
				EntityID:     entityID,
				OldValue:     oldValue,
				NewValue:     newValue,
				Reason:       override.Reason,
				UserID:       override.UserID,
				CreatedAt:    time.Now().UTC(),
			}
			if err := s.repo.Append(ctx, db, entry); err != nil {
				return OverrideOperationResult{}, err
			}

			return results.Succeed[ledgerevents.OverrideCommittedPayloadV1, ledgerevents.OverrideFailedPayloadV1](
				ledgerevents.OverrideCommittedPayloadV1{
					TournamentID: override.TournamentID,
					AuditEntryID: entry.ID,
					Action:       string(override.Action),
					EntityType:   string(entityType),
					EntityID:     entityID,
					CommittedAt:  entry.CreatedAt,
				}), nil
		})
		if err != nil {
			return result, err
		}

		if result.IsSuccess() {
			s.publishCommitted(ctx, *result.Success)
		}
		return result, nil
	})
}

func (s *LedgerService) publishCommitted(ctx context.Context, payload ledgerevents.OverrideCommittedPayloadV1) {
	msg, err := s.helpers.CreateNewMessage(payload, ledgerevents.OverrideCommittedV1)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build override committed message", attr.Error(err))
		return
	}
	if err := s.eventBus.Publish(ledgerevents.OverrideCommittedV1, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish override committed event",
			attr.Error(err),
			attr.String("audit_entry_id", payload.AuditEntryID.String()),
		)
	}
}

// resolveEntity maps an override to its audit entity without touching storage.
func resolveEntity(override Override) (ledgerdb.EntityType, uuid.UUID) {
	switch override.Action {
	case ledgerdb.ActionResultCorrection, ledgerdb.ActionForfeit:
		return ledgerdb.EntityRoundResult, override.PairingID.UUID()
	case ledgerdb.ActionScoreOverride, ledgerdb.ActionSpeakerPointsEdit:
		return ledgerdb.EntitySpeakerResult, override.PairingID.UUID()
	case ledgerdb.ActionByeAssigned:
		return ledgerdb.EntityRoundResult, override.RegistrationID.UUID()
	case ledgerdb.ActionDQ:
		return ledgerdb.EntityRegistration, override.RegistrationID.UUID()
	case ledgerdb.ActionManualRank:
		return ledgerdb.EntityComputedStanding, override.RegistrationID.UUID()
	case ledgerdb.ActionTiebreakerOverride:
		key := NewPairKey(*override.RegistrationID, *override.OtherRegistrationID)
		return ledgerdb.EntityComputedStanding, key.A.UUID()
	default:
		return "", uuid.Nil
	}
}

// buildSnapshots computes the pre- and post-state snapshots for the override.
// A non-empty reject string means the override is refused with that reason.
func (s *LedgerService) buildSnapshots(
	ctx context.Context,
	db bun.IDB,
	override Override,
	prior []ledgerdb.TabAuditEntry,
) (oldValue, newValue *ledgerdb.Snapshot, reject string, err error) {
	switch override.Action {
	case ledgerdb.ActionResultCorrection, ledgerdb.ActionForfeit:
		return s.buildResultSnapshots(ctx, db, override, prior)
	case ledgerdb.ActionScoreOverride, ledgerdb.ActionSpeakerPointsEdit:
		return s.buildSpeakerSnapshots(ctx, db, override, prior)
	case ledgerdb.ActionDQ:
		return s.buildDQSnapshots(ctx, db, override, prior)
	case ledgerdb.ActionManualRank:
		return buildManualRankSnapshots(override, prior)
	case ledgerdb.ActionByeAssigned:
		return s.buildByeSnapshots(ctx, db, override, prior)
	case ledgerdb.ActionTiebreakerOverride:
		return s.buildTiebreakSnapshots(ctx, db, override, prior)
	default:
		return nil, nil, fmt.Sprintf("unknown override action %q", override.Action), nil
	}
}

func (s *LedgerService) buildResultSnapshots(
	ctx context.Context,
	db bun.IDB,
	override Override,
	prior []ledgerdb.TabAuditEntry,
) (*ledgerdb.Snapshot, *ledgerdb.Snapshot, string, error) {
	oldValue := lastSnapshot(prior)
	if oldValue == nil {
		base, err := s.resultRepo.GetRoundResultByPairing(ctx, db, *override.PairingID)
		if err != nil && !errors.Is(err, resultdb.ErrResultNotFound) {
			return nil, nil, "", err
		}
		if base != nil {
			oldValue = roundResultSnapshot(base)
		}
	}

	if override.Action == ledgerdb.ActionResultCorrection && oldValue == nil {
		return nil, nil, fmt.Sprintf("no result recorded for pairing %s; ingest it before correcting", *override.PairingID), nil
	}

	newSnap := &ledgerdb.RoundResultSnapshot{
		PairingID: override.PairingID,
	}
	switch override.Action {
	case ledgerdb.ActionResultCorrection:
		newSnap.Winner = *override.NewWinner
	case ledgerdb.ActionForfeit:
		newSnap.Forfeit = true
		if *override.ForfeitSide == sharedtypes.SideAff {
			newSnap.Winner = sharedtypes.WinnerNeg
		} else {
			newSnap.Winner = sharedtypes.WinnerAff
		}
	}

	return oldValue, &ledgerdb.Snapshot{
		EntityType:  ledgerdb.EntityRoundResult,
		RoundResult: newSnap,
	}, "", nil
}

func (s *LedgerService) buildSpeakerSnapshots(
	ctx context.Context,
	db bun.IDB,
	override Override,
	prior []ledgerdb.TabAuditEntry,
) (*ledgerdb.Snapshot, *ledgerdb.Snapshot, string, error) {
	// Entries for this pairing cover both sides; keep only the target's.
	oldValue := lastSpeakerSnapshotFor(prior, *override.RegistrationID)

	var side sharedtypes.Side
	if oldValue != nil {
		side = oldValue.SpeakerResult.Side
	} else {
		base, err := s.resultRepo.GetSpeakerResult(ctx, db, *override.PairingID, *override.RegistrationID)
		if err != nil {
			if errors.Is(err, resultdb.ErrResultNotFound) {
				return nil, nil, fmt.Sprintf("no speaker result for registration %s in pairing %s",
					*override.RegistrationID, *override.PairingID), nil
			}
			return nil, nil, "", err
		}
		side = base.Side
		oldValue = &ledgerdb.Snapshot{
			EntityType: ledgerdb.EntitySpeakerResult,
			SpeakerResult: &ledgerdb.SpeakerResultSnapshot{
				PairingID:      base.PairingID,
				RegistrationID: base.RegistrationID,
				Side:           base.Side,
				ScoreTenths:    base.ScoreTenths,
			},
		}
	}

	newValue := &ledgerdb.Snapshot{
		EntityType: ledgerdb.EntitySpeakerResult,
		SpeakerResult: &ledgerdb.SpeakerResultSnapshot{
			PairingID:      *override.PairingID,
			RegistrationID: *override.RegistrationID,
			Side:           side,
			ScoreTenths:    *override.NewScoreTenths,
		},
	}
	return oldValue, newValue, "", nil
}

func (s *LedgerService) buildDQSnapshots(
	ctx context.Context,
	db bun.IDB,
	override Override,
	prior []ledgerdb.TabAuditEntry,
) (*ledgerdb.Snapshot, *ledgerdb.Snapshot, string, error) {
	reg, err := s.rosterRepo.GetByID(ctx, db, *override.RegistrationID)
	if err != nil {
		if errors.Is(err, rosterdb.ErrRegistrationNotFound) {
			return nil, nil, fmt.Sprintf("registration %s not found", *override.RegistrationID), nil
		}
		return nil, nil, "", err
	}
	if reg.TournamentID != override.TournamentID {
		return nil, nil, fmt.Sprintf("registration %s belongs to tournament %s", reg.ID, reg.TournamentID), nil
	}

	oldValue := lastSnapshot(prior)
	if oldValue == nil {
		oldValue = &ledgerdb.Snapshot{
			EntityType: ledgerdb.EntityRegistration,
			Registration: &ledgerdb.RegistrationSnapshot{
				RegistrationID: reg.ID,
				DQ:             false,
				Withdrawn:      reg.Withdrawn,
			},
		}
	}

	newValue := &ledgerdb.Snapshot{
		EntityType: ledgerdb.EntityRegistration,
		Registration: &ledgerdb.RegistrationSnapshot{
			RegistrationID: reg.ID,
			DQ:             true,
			Withdrawn:      reg.Withdrawn,
		},
	}
	return oldValue, newValue, "", nil
}

func buildManualRankSnapshots(override Override, prior []ledgerdb.TabAuditEntry) (*ledgerdb.Snapshot, *ledgerdb.Snapshot, string, error) {
	newValue := &ledgerdb.Snapshot{
		EntityType: ledgerdb.EntityComputedStanding,
		Standing: &ledgerdb.StandingSnapshot{
			RegistrationID: *override.RegistrationID,
			Rank:           override.TargetRank,
		},
	}
	return lastSnapshot(prior), newValue, "", nil
}

func (s *LedgerService) buildByeSnapshots(
	ctx context.Context,
	db bun.IDB,
	override Override,
	prior []ledgerdb.TabAuditEntry,
) (*ledgerdb.Snapshot, *ledgerdb.Snapshot, string, error) {
	round, err := s.pairingRepo.GetRound(ctx, db, *override.RoundID)
	if err != nil {
		if errors.Is(err, pairingdb.ErrRoundNotFound) {
			return nil, nil, fmt.Sprintf("round %s not found", *override.RoundID), nil
		}
		return nil, nil, "", err
	}
	if round.TournamentID != override.TournamentID {
		return nil, nil, fmt.Sprintf("round %s belongs to tournament %s", round.ID, round.TournamentID), nil
	}
	if _, err := s.rosterRepo.GetByID(ctx, db, *override.RegistrationID); err != nil {
		if errors.Is(err, rosterdb.ErrRegistrationNotFound) {
			return nil, nil, fmt.Sprintf("registration %s not found", *override.RegistrationID), nil
		}
		return nil, nil, "", err
	}

	newValue := &ledgerdb.Snapshot{
		EntityType: ledgerdb.EntityRoundResult,
		RoundResult: &ledgerdb.RoundResultSnapshot{
			RoundID:        override.RoundID,
			RegistrationID: override.RegistrationID,
			Winner:         sharedtypes.WinnerNone,
			Bye:            true,
		},
	}
	return lastSnapshot(prior), newValue, "", nil
}

func (s *LedgerService) buildTiebreakSnapshots(
	ctx context.Context,
	db bun.IDB,
	override Override,
	prior []ledgerdb.TabAuditEntry,
) (*ledgerdb.Snapshot, *ledgerdb.Snapshot, string, error) {
	for _, id := range []sharedtypes.RegistrationID{*override.RegistrationID, *override.OtherRegistrationID} {
		if _, err := s.rosterRepo.GetByID(ctx, db, id); err != nil {
			if errors.Is(err, rosterdb.ErrRegistrationNotFound) {
				return nil, nil, fmt.Sprintf("registration %s not found", id), nil
			}
			return nil, nil, "", err
		}
	}

	key := NewPairKey(*override.RegistrationID, *override.OtherRegistrationID)
	newValue := &ledgerdb.Snapshot{
		EntityType: ledgerdb.EntityComputedStanding,
		Standing: &ledgerdb.StandingSnapshot{
			RegistrationID: key.A,
			Above:          override.RegistrationID,
			Below:          override.OtherRegistrationID,
		},
	}
	return lastSnapshot(prior), newValue, "", nil
}

func roundResultSnapshot(base *resultdb.RoundResult) *ledgerdb.Snapshot {
	pairingID := base.PairingID
	return &ledgerdb.Snapshot{
		EntityType: ledgerdb.EntityRoundResult,
		RoundResult: &ledgerdb.RoundResultSnapshot{
			PairingID: &pairingID,
			Winner:    base.Winner,
			Forfeit:   base.Forfeit,
			DQ:        base.DQ,
			Bye:       base.Bye,
		},
	}
}

// lastSnapshot returns the most recent post-state among prior entries.
func lastSnapshot(prior []ledgerdb.TabAuditEntry) *ledgerdb.Snapshot {
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].NewValue != nil {
			return prior[i].NewValue
		}
	}
	return nil
}

// lastSpeakerSnapshotFor returns the most recent post-state for one side of a
// pairing's speaker entries.
func lastSpeakerSnapshotFor(prior []ledgerdb.TabAuditEntry, registrationID sharedtypes.RegistrationID) *ledgerdb.Snapshot {
	for i := len(prior) - 1; i >= 0; i-- {
		snap := prior[i].NewValue
		if snap == nil || snap.SpeakerResult == nil {
			continue
		}
		if snap.SpeakerResult.RegistrationID == registrationID {
			return snap
		}
	}
	return nil
}

func failOverride(override Override, reason string) OverrideOperationResult {
	return results.Fail[ledgerevents.OverrideCommittedPayloadV1, ledgerevents.OverrideFailedPayloadV1](
		ledgerevents.OverrideFailedPayloadV1{
			TournamentID: override.TournamentID,
			Action:       string(override.Action),
			Reason:       reason,
		})
}
