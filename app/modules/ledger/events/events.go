// Package ledgerevents defines the topics and payloads the override ledger
// emits.
package ledgerevents

import (
	"time"

	"github.com/google/uuid"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

const (
	// OverrideCommittedV1 is published after an override and its audit entry
	// are durably stored. The standings module listens to it.
	OverrideCommittedV1 = "tab.override.committed.v1"

	// OverrideFailedV1 is published when an override is rejected.
	OverrideFailedV1 = "tab.override.failed.v1"
)

// OverrideCommittedPayloadV1 announces a stored override.
type OverrideCommittedPayloadV1 struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	AuditEntryID uuid.UUID                `json:"audit_entry_id"`
	Action       string                   `json:"action"`
	EntityType   string                   `json:"entity_type"`
	EntityID     uuid.UUID                `json:"entity_id"`
	CommittedAt  time.Time                `json:"committed_at"`
}

// OverrideFailedPayloadV1 reports a rejected override.
type OverrideFailedPayloadV1 struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	Action       string                   `json:"action"`
	Reason       string                   `json:"reason"`
}
