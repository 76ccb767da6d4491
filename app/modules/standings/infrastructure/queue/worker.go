package standingsqueue

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	standingsservice "github.com/open-forensics/tab-service/app/modules/standings/application"
	"github.com/open-forensics/tab-service/app/shared/attr"
)

// RecomputeWorker runs queued recomputes. A data-integrity failure is final:
// retrying cannot fill a missing result, so the job completes and the failure
// event already published by the service carries the detail.
type RecomputeWorker struct {
	river.WorkerDefaults[RecomputeArgs]

	service standingsservice.Service
	logger  *slog.Logger
}

func NewRecomputeWorker(service standingsservice.Service, logger *slog.Logger) *RecomputeWorker {
	return &RecomputeWorker{service: service, logger: logger}
}

func (w *RecomputeWorker) Work(ctx context.Context, job *river.Job[RecomputeArgs]) error {
	result, err := w.service.Recompute(ctx, job.Args.TournamentID)
	if err != nil {
		w.logger.ErrorContext(ctx, "Recompute job failed, river will retry",
			attr.TournamentID("tournament_id", job.Args.TournamentID),
			attr.Error(err),
		)
		return err
	}

	if result.IsFailure() {
		w.logger.WarnContext(ctx, "Recompute rejected",
			attr.TournamentID("tournament_id", job.Args.TournamentID),
			attr.String("reason", result.Failure.Reason),
		)
	}
	return nil
}
