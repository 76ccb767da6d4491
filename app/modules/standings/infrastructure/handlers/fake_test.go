package standingshandlers

import (
	"context"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// FakeScheduler records recompute requests.
type FakeScheduler struct {
	Enqueued []sharedtypes.TournamentID

	EnqueueRecomputeFunc func(ctx context.Context, tournamentID sharedtypes.TournamentID) error
}

func (f *FakeScheduler) EnqueueRecompute(ctx context.Context, tournamentID sharedtypes.TournamentID) error {
	f.Enqueued = append(f.Enqueued, tournamentID)
	if f.EnqueueRecomputeFunc != nil {
		return f.EnqueueRecomputeFunc(ctx, tournamentID)
	}
	return nil
}

func (f *FakeScheduler) Start(context.Context) error { return nil }

func (f *FakeScheduler) Stop(context.Context) error { return nil }
