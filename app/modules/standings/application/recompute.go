package standingsservice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	ledgerservice "github.com/open-forensics/tab-service/app/modules/ledger/application"
	standingsevents "github.com/open-forensics/tab-service/app/modules/standings/events"
	standingsdb "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/repositories"
	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Recompute loads a consistent view of the tournament, runs the calculator,
// and replaces the stored snapshot. A data-integrity gap is a business
// failure, not an infrastructure error: the stale snapshot stays in place and
// the gap is reported.
func (s *StandingsService) Recompute(ctx context.Context, tournamentID sharedtypes.TournamentID) (RecomputeOperationResult, error) {
	s.logger.InfoContext(ctx, "Recomputing standings",
		attr.ExtractCorrelationID(ctx),
		attr.TournamentID("tournament_id", tournamentID),
	)

	return withTelemetry(s, ctx, "RecomputeStandings", func(ctx context.Context) (RecomputeOperationResult, error) {
		result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (RecomputeOperationResult, error) {
			inputs, err := s.loadInputs(ctx, db, tournamentID)
			if err != nil {
				return RecomputeOperationResult{}, err
			}

			standings, err := Compute(inputs)
			if err != nil {
				var integrityErr *DataIntegrityError
				if errors.As(err, &integrityErr) {
					return results.Fail[standingsevents.StandingsRecomputedPayloadV1, standingsevents.StandingsRecomputeFailedPayloadV1](
						standingsevents.StandingsRecomputeFailedPayloadV1{
							TournamentID: tournamentID,
							Reason:       integrityErr.Error(),
						}), nil
				}
				return RecomputeOperationResult{}, err
			}

			rows := make([]standingsdb.ComputedStanding, len(standings.Rows))
			for i, row := range standings.Rows {
				rows[i] = standingsdb.ComputedStanding{
					ID:             uuid.New(),
					TournamentID:   tournamentID,
					RegistrationID: row.RegistrationID,
					DisplayName:    row.DisplayName,
					Wins:           row.Wins,
					Losses:         row.Losses,
					TotalTenths:    row.TotalTenths,
					RoundsPlayed:   row.RoundsPlayed,
					RoundsScored:   row.RoundsScored,
					DQ:             row.DQ,
					Rank:           row.Rank,
					DecidedBy:      row.DecidedBy,
					Trace:          row.Trace,
					ComputedAt:     standings.ComputedAt,
				}
			}
			if err := s.repo.ReplaceSnapshot(ctx, db, tournamentID, rows); err != nil {
				return RecomputeOperationResult{}, err
			}

			return results.Succeed[standingsevents.StandingsRecomputedPayloadV1, standingsevents.StandingsRecomputeFailedPayloadV1](
				standingsevents.StandingsRecomputedPayloadV1{
					TournamentID: tournamentID,
					Entries:      len(rows),
					ComputedAt:   standings.ComputedAt,
				}), nil
		})
		if err != nil {
			return result, err
		}

		if result.IsSuccess() {
			s.publish(ctx, standingsevents.StandingsRecomputedV1, *result.Success)
		} else if result.IsFailure() {
			s.publish(ctx, standingsevents.StandingsRecomputeFailedV1, *result.Failure)
		}
		return result, nil
	})
}

// loadInputs reads everything the calculator needs inside one transaction.
func (s *StandingsService) loadInputs(ctx context.Context, db bun.IDB, tournamentID sharedtypes.TournamentID) (TournamentInputs, error) {
	registrations, err := s.rosterRepo.ListByTournament(ctx, db, tournamentID)
	if err != nil {
		return TournamentInputs{}, err
	}
	pairings, err := s.pairingRepo.ListByTournament(ctx, db, tournamentID)
	if err != nil {
		return TournamentInputs{}, err
	}
	roundResults, err := s.resultRepo.ListRoundResults(ctx, db, tournamentID)
	if err != nil {
		return TournamentInputs{}, err
	}
	speakerResults, err := s.resultRepo.ListSpeakerResults(ctx, db, tournamentID)
	if err != nil {
		return TournamentInputs{}, err
	}
	entries, err := s.ledgerRepo.ListByTournament(ctx, db, tournamentID)
	if err != nil {
		return TournamentInputs{}, err
	}

	return TournamentInputs{
		TournamentID:   tournamentID,
		Registrations:  registrations,
		Pairings:       pairings,
		RoundResults:   roundResults,
		SpeakerResults: speakerResults,
		Overlay:        ledgerservice.FoldOverlay(entries),
		DQPolicy:       s.tabConfig.DQPolicy,
	}, nil
}

func (s *StandingsService) publish(ctx context.Context, topic string, payload any) {
	msg, err := s.helpers.CreateNewMessage(payload, topic)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build standings message", attr.Error(err))
		return
	}
	if err := s.eventBus.Publish(topic, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish standings event",
			attr.Error(err),
			attr.String("topic", topic),
		)
	}
}
