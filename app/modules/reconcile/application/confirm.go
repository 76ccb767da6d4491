package reconcileservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	reconcileevents "github.com/open-forensics/tab-service/app/modules/reconcile/events"
	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// resolvedRow is a sheet row whose both sides resolved to registrations.
type resolvedRow struct {
	line  int
	affID sharedtypes.RegistrationID
	negID sharedtypes.RegistrationID
}

// Confirm commits a reviewed proposal: one round, then its pairings one row
// at a time. Pairing inserts are deliberately not transactional with each
// other; a mid-commit failure leaves the committed rows standing and reports
// every row's outcome so the operator knows exactly what to clean up.
func (s *ReconcileService) Confirm(ctx context.Context, req ConfirmRequest) (ConfirmOperationResult, error) {
	s.logger.InfoContext(ctx, "Confirming legacy import",
		attr.ExtractCorrelationID(ctx),
		attr.TournamentID("tournament_id", req.Proposal.TournamentID),
		attr.Int("sequence", req.Sequence),
		attr.Int("rows", len(req.Proposal.Rows)),
		attr.UserID("user_id", req.UserID),
	)

	return withTelemetry(s, ctx, "ConfirmImport", func(ctx context.Context) (ConfirmOperationResult, error) {
		if req.Sequence < 1 {
			return failConfirm(req, "round sequence must be positive"), nil
		}
		if len(req.Proposal.Rows) == 0 {
			return failConfirm(req, "proposal has no rows"), nil
		}

		resolved, unresolved := resolveRows(req)
		if len(unresolved) > 0 {
			result := failConfirm(req, "rows without an exact/good match need an explicit selection")
			result.Failure.Rows = unresolved
			return result, nil
		}

		round := &pairingdb.Round{
			ID:           sharedtypes.RoundID(uuid.New()),
			TournamentID: req.Proposal.TournamentID,
			Sequence:     req.Sequence,
			Status:       sharedtypes.RoundUpcoming,
		}
		if err := s.pairingRepo.CreateRound(ctx, nil, round); err != nil {
			if errors.Is(err, pairingdb.ErrDuplicateRoundSequence) {
				return failConfirm(req, fmt.Sprintf("round %d already exists for tournament %s", req.Sequence, req.Proposal.TournamentID)), nil
			}
			return ConfirmOperationResult{}, err
		}

		statuses, failed := s.insertPairings(ctx, round.ID, resolved)
		if failed {
			partial := &PartialCommitError{RoundID: round.ID, Rows: statuses}
			result := failConfirm(req, partial.Error())
			result.Failure.RoundID = &round.ID
			result.Failure.Rows = statuses
			return result, nil
		}

		s.creditSideCounts(ctx, resolved)

		payload := reconcileevents.ImportConfirmedPayloadV1{
			TournamentID: req.Proposal.TournamentID,
			RoundID:      round.ID,
			Sequence:     req.Sequence,
			PairingCount: len(resolved),
			ConfirmedAt:  time.Now().UTC(),
		}
		s.publishConfirmed(ctx, payload)

		return results.Succeed[reconcileevents.ImportConfirmedPayloadV1, ConfirmFailure](payload), nil
	})
}

// resolveRows applies operator selections over auto-matches. A side resolves
// from its selection when one is present, otherwise from the best candidate
// of an exact or good band.
func resolveRows(req ConfirmRequest) ([]resolvedRow, []RowStatus) {
	var resolved []resolvedRow
	var unresolved []RowStatus

	for _, row := range req.Proposal.Rows {
		sel := req.Selections[row.Line]

		affID, affErr := resolveSide(row.Aff, sel.Aff)
		negID, negErr := resolveSide(row.Neg, sel.Neg)
		if affErr == nil && negErr == nil && affID == negID {
			affErr = fmt.Errorf("both sides resolved to the same registration %s", affID)
		}

		if affErr != nil || negErr != nil {
			unresolved = append(unresolved, RowStatus{
				Line:   row.Line,
				Status: RowUnresolved,
				Error:  sideErrors(affErr, negErr),
			})
			continue
		}

		resolved = append(resolved, resolvedRow{line: row.Line, affID: affID, negID: negID})
	}

	return resolved, unresolved
}

func resolveSide(match MatchResult, selection *sharedtypes.RegistrationID) (sharedtypes.RegistrationID, error) {
	if selection != nil {
		return *selection, nil
	}
	if match.Band == BandExact || match.Band == BandGood {
		return match.Best().RegistrationID, nil
	}
	return sharedtypes.RegistrationID{}, fmt.Errorf("%q: %w", match.Query, ErrAmbiguousMatch)
}

func sideErrors(affErr, negErr error) string {
	switch {
	case affErr != nil && negErr != nil:
		return fmt.Sprintf("aff %v; neg %v", affErr, negErr)
	case affErr != nil:
		return fmt.Sprintf("aff %v", affErr)
	default:
		return fmt.Sprintf("neg %v", negErr)
	}
}

// insertPairings commits every resolved row, continuing past failures so the
// report covers the whole sheet.
func (s *ReconcileService) insertPairings(ctx context.Context, roundID sharedtypes.RoundID, rows []resolvedRow) ([]RowStatus, bool) {
	statuses := make([]RowStatus, 0, len(rows))
	failed := false

	for _, row := range rows {
		pairing := &pairingdb.Pairing{
			ID:      sharedtypes.PairingID(uuid.New()),
			RoundID: roundID,
			AffID:   row.affID,
			NegID:   row.negID,
			Status:  pairingdb.PairingScheduled,
		}
		if err := s.pairingRepo.InsertPairing(ctx, nil, pairing); err != nil {
			failed = true
			statuses = append(statuses, RowStatus{Line: row.line, Status: RowFailed, Error: err.Error()})
			s.logger.ErrorContext(ctx, "Pairing insert failed",
				attr.ExtractCorrelationID(ctx),
				attr.Int("line", row.line),
				attr.RoundID("round_id", roundID),
				attr.Error(err),
			)
			continue
		}
		id := pairing.ID
		statuses = append(statuses, RowStatus{Line: row.line, Status: RowCommitted, PairingID: &id})
	}

	return statuses, failed
}

// creditSideCounts bumps the advisory aff/neg counters. Side counts feed
// side-balance fairness elsewhere, not standings; a failure here is logged
// and swallowed, never rolled back into the import.
func (s *ReconcileService) creditSideCounts(ctx context.Context, rows []resolvedRow) {
	affIDs := make([]sharedtypes.RegistrationID, 0, len(rows))
	negIDs := make([]sharedtypes.RegistrationID, 0, len(rows))
	for _, row := range rows {
		affIDs = append(affIDs, row.affID)
		negIDs = append(negIDs, row.negID)
	}

	if err := s.rosterRepo.IncrementSideCounts(ctx, nil, affIDs, negIDs); err != nil {
		s.logger.WarnContext(ctx, "Side count update failed after import commit",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
	}
}

func (s *ReconcileService) publishConfirmed(ctx context.Context, payload reconcileevents.ImportConfirmedPayloadV1) {
	msg, err := s.helpers.CreateNewMessage(payload, reconcileevents.ImportConfirmedV1)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build import confirmed message", attr.Error(err))
		return
	}
	if err := s.eventBus.Publish(reconcileevents.ImportConfirmedV1, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish import confirmed event",
			attr.Error(err),
			attr.RoundID("round_id", payload.RoundID),
		)
	}
}

func failConfirm(req ConfirmRequest, reason string) ConfirmOperationResult {
	return results.Fail[reconcileevents.ImportConfirmedPayloadV1](ConfirmFailure{
		TournamentID: req.Proposal.TournamentID,
		Sequence:     req.Sequence,
		Reason:       reason,
	})
}
