package resultservice

import (
	"context"

	resultevents "github.com/open-forensics/tab-service/app/modules/results/events"
	"github.com/open-forensics/tab-service/app/shared/results"
)

// IngestOperationResult is the envelope for result ingestion.
type IngestOperationResult = results.OperationResult[
	resultevents.RoundResultCommittedPayloadV1,
	resultevents.RoundResultFailedPayloadV1,
]

// Service is the result ingestion surface.
type Service interface {
	IngestPairingResult(ctx context.Context, submission resultevents.PairingResultSubmittedPayloadV1) (IngestOperationResult, error)
}
