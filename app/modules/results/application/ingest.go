package resultservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	resultevents "github.com/open-forensics/tab-service/app/modules/results/events"
	resultdb "github.com/open-forensics/tab-service/app/modules/results/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// IngestPairingResult validates a submitted outcome against the pairing store
// and persists the RoundResult and SpeakerResults in one transaction. Stored
// results are immutable; a second submission for the same pairing is rejected
// and must go through the override ledger instead.
func (s *ResultService) IngestPairingResult(ctx context.Context, submission resultevents.PairingResultSubmittedPayloadV1) (IngestOperationResult, error) {
	s.logger.InfoContext(ctx, "Ingesting pairing result",
		attr.ExtractCorrelationID(ctx),
		attr.PairingID("pairing_id", submission.PairingID),
		attr.TournamentID("tournament_id", submission.TournamentID),
	)

	return withTelemetry(s, ctx, "IngestPairingResult", func(ctx context.Context) (IngestOperationResult, error) {
		if reason := validateSubmission(submission); reason != "" {
			return fail(submission, reason), nil
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (IngestOperationResult, error) {
			pairing, err := s.pairingRepo.GetPairing(ctx, db, submission.PairingID)
			if err != nil {
				if errors.Is(err, pairingdb.ErrPairingNotFound) {
					return fail(submission, fmt.Sprintf("pairing %s not found", submission.PairingID)), nil
				}
				return IngestOperationResult{}, err
			}

			if reason := validateSides(submission, pairing); reason != "" {
				return fail(submission, reason), nil
			}

			result := &resultdb.RoundResult{
				ID:           uuid.New(),
				TournamentID: submission.TournamentID,
				PairingID:    submission.PairingID,
				Winner:       submission.Winner,
				Forfeit:      submission.Forfeit,
				DQ:           submission.DQ,
				Bye:          submission.Bye,
			}
			if err := s.repo.InsertRoundResult(ctx, db, result); err != nil {
				if errors.Is(err, resultdb.ErrDuplicateResult) {
					return fail(submission, "result already recorded; use an override to correct it"), nil
				}
				return IngestOperationResult{}, err
			}

			speakerResults := make([]resultdb.SpeakerResult, 0, len(submission.SpeakerScores))
			for _, score := range submission.SpeakerScores {
				speakerResults = append(speakerResults, resultdb.SpeakerResult{
					ID:             uuid.New(),
					TournamentID:   submission.TournamentID,
					PairingID:      submission.PairingID,
					RegistrationID: score.RegistrationID,
					Side:           score.Side,
					ScoreTenths:    score.ScoreTenths,
				})
			}
			if err := s.repo.InsertSpeakerResults(ctx, db, speakerResults); err != nil {
				return IngestOperationResult{}, err
			}

			return results.Succeed[resultevents.RoundResultCommittedPayloadV1, resultevents.RoundResultFailedPayloadV1](
				resultevents.RoundResultCommittedPayloadV1{
					TournamentID: submission.TournamentID,
					RoundID:      pairing.RoundID,
					PairingID:    submission.PairingID,
					CommittedAt:  time.Now().UTC(),
				}), nil
		})
	})
}

func validateSubmission(submission resultevents.PairingResultSubmittedPayloadV1) string {
	switch submission.Winner {
	case sharedtypes.WinnerAff, sharedtypes.WinnerNeg:
	case sharedtypes.WinnerNone:
		// A bye is a win for whichever side kept it, so it names that
		// side too; without one the standings would credit nobody.
		if submission.Bye {
			return "a bye must name the side credited with the win"
		}
		return "winner is required"
	default:
		return fmt.Sprintf("unknown winner side %q", submission.Winner)
	}

	if submission.Bye && (submission.Forfeit || submission.DQ) {
		return "a bye cannot also be a forfeit or DQ"
	}

	for _, score := range submission.SpeakerScores {
		if score.ScoreTenths < 0 {
			return fmt.Sprintf("negative speaker score for registration %s", score.RegistrationID)
		}
	}
	return ""
}

func validateSides(submission resultevents.PairingResultSubmittedPayloadV1, pairing *pairingdb.Pairing) string {
	for _, score := range submission.SpeakerScores {
		switch score.Side {
		case sharedtypes.SideAff:
			if score.RegistrationID != pairing.AffID {
				return fmt.Sprintf("registration %s is not the aff side of pairing %s", score.RegistrationID, pairing.ID)
			}
		case sharedtypes.SideNeg:
			if score.RegistrationID != pairing.NegID {
				return fmt.Sprintf("registration %s is not the neg side of pairing %s", score.RegistrationID, pairing.ID)
			}
		default:
			return fmt.Sprintf("unknown side %q", score.Side)
		}
	}
	return ""
}

func fail(submission resultevents.PairingResultSubmittedPayloadV1, reason string) IngestOperationResult {
	return results.Fail[resultevents.RoundResultCommittedPayloadV1, resultevents.RoundResultFailedPayloadV1](
		resultevents.RoundResultFailedPayloadV1{
			TournamentID: submission.TournamentID,
			PairingID:    submission.PairingID,
			Reason:       reason,
		})
}
