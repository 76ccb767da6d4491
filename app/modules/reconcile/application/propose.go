package reconcileservice

import (
	"context"

	"github.com/open-forensics/tab-service/app/shared/attr"
	"github.com/open-forensics/tab-service/app/shared/results"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Propose parses a legacy pairing sheet and fuzzy-matches every row against
// the tournament roster. Nothing is written; the returned proposal is what
// the operator reviews and confirms.
func (s *ReconcileService) Propose(ctx context.Context, tournamentID sharedtypes.TournamentID, filename string, data []byte) (ProposeOperationResult, error) {
	s.logger.InfoContext(ctx, "Proposing legacy import",
		attr.ExtractCorrelationID(ctx),
		attr.TournamentID("tournament_id", tournamentID),
		attr.String("filename", filename),
	)

	return withTelemetry(s, ctx, "ProposeImport", func(ctx context.Context) (ProposeOperationResult, error) {
		parser, err := s.parserFactory.GetParser(filename)
		if err != nil {
			return failPropose(tournamentID, filename, err.Error()), nil
		}

		rows, err := parser.Parse(data)
		if err != nil {
			return failPropose(tournamentID, filename, err.Error()), nil
		}

		regs, err := s.rosterRepo.ListByTournament(ctx, nil, tournamentID)
		if err != nil {
			return ProposeOperationResult{}, err
		}
		if len(regs) == 0 {
			return failPropose(tournamentID, filename, "tournament has no registrations to match against"), nil
		}

		proposal := &Proposal{
			TournamentID: tournamentID,
			Filename:     filename,
			Rows:         make([]ProposedRow, 0, len(rows)),
		}
		for _, row := range rows {
			proposal.Rows = append(proposal.Rows, ProposedRow{
				Line:    row.Line,
				AffName: row.AffName,
				NegName: row.NegName,
				Aff:     s.matcher.Match(row.AffName, regs),
				Neg:     s.matcher.Match(row.NegName, regs),
			})
		}

		return results.Succeed[*Proposal, ProposeFailure](proposal), nil
	})
}

func failPropose(tournamentID sharedtypes.TournamentID, filename, reason string) ProposeOperationResult {
	return results.Fail[*Proposal](ProposeFailure{
		TournamentID: tournamentID,
		Filename:     filename,
		Reason:       reason,
	})
}
