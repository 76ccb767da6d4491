package standingsqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"golang.org/x/time/rate"

	standingsservice "github.com/open-forensics/tab-service/app/modules/standings/application"
	"github.com/open-forensics/tab-service/app/shared/attr"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Scheduler is the contract the event handlers and the operator API use to
// request recomputes.
type Scheduler interface {
	// EnqueueRecompute schedules a recompute for the tournament. Calls within
	// the debounce window collapse into the already-queued job.
	EnqueueRecompute(ctx context.Context, tournamentID sharedtypes.TournamentID) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Service schedules recompute jobs through River.
type Service struct {
	client   *river.Client[pgx.Tx]
	pool     *pgxpool.Pool
	logger   *slog.Logger
	debounce time.Duration
	limiter  *rate.Limiter
}

var _ Scheduler = (*Service)(nil)

// NewService creates the River-backed recompute scheduler. River needs pgx,
// not database/sql, so it runs its own pool against the same DSN.
func NewService(
	ctx context.Context,
	dsn string,
	debounce time.Duration,
	service standingsservice.Service,
	logger *slog.Logger,
) (*Service, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN for River: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool for River: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRecomputeWorker(service, logger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			"standings":        {MaxWorkers: 4},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &Service{
		client:   client,
		pool:     pool,
		logger:   logger,
		debounce: debounce,
		// Enqueue attempts are cheap but chatty during round close; the
		// limiter keeps the unique-insert traffic bounded.
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 20),
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Standings queue service started")
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	s.logger.Info("Standings queue service stopped")
	return nil
}

func (s *Service) EnqueueRecompute(ctx context.Context, tournamentID sharedtypes.TournamentID) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("recompute enqueue throttled: %w", err)
	}

	result, err := s.client.Insert(ctx, RecomputeArgs{TournamentID: tournamentID}, &river.InsertOpts{
		Queue: "standings",
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: s.debounce,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue recompute for tournament %s: %w", tournamentID, err)
	}

	if result.UniqueSkippedAsDuplicate {
		s.logger.DebugContext(ctx, "Recompute already queued within debounce window",
			attr.TournamentID("tournament_id", tournamentID),
		)
	} else {
		s.logger.InfoContext(ctx, "Recompute enqueued",
			attr.TournamentID("tournament_id", tournamentID),
			attr.Int64("job_id", result.Job.ID),
		)
	}
	return nil
}
