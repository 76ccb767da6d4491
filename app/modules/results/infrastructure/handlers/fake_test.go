package resulthandlers

import (
	"context"

	resultservice "github.com/open-forensics/tab-service/app/modules/results/application"
	resultevents "github.com/open-forensics/tab-service/app/modules/results/events"
)

// FakeResultService is a programmable resultservice.Service.
type FakeResultService struct {
	Submissions []resultevents.PairingResultSubmittedPayloadV1

	IngestFunc func(ctx context.Context, submission resultevents.PairingResultSubmittedPayloadV1) (resultservice.IngestOperationResult, error)
}

var _ resultservice.Service = (*FakeResultService)(nil)

func (f *FakeResultService) IngestPairingResult(ctx context.Context, submission resultevents.PairingResultSubmittedPayloadV1) (resultservice.IngestOperationResult, error) {
	f.Submissions = append(f.Submissions, submission)
	if f.IngestFunc != nil {
		return f.IngestFunc(ctx, submission)
	}
	return resultservice.IngestOperationResult{}, nil
}
