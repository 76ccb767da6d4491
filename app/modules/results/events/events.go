// Package resultevents defines the topics and payloads the results module
// consumes and emits.
package resultevents

import (
	"time"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

const (
	// PairingResultSubmittedV1 is published by the ballot-entry surface when a
	// judge's decision is ready for ingestion.
	PairingResultSubmittedV1 = "tab.pairing.result.submitted.v1"

	// RoundResultCommittedV1 is published after a result is durably stored.
	// The standings module listens to it to schedule a recompute.
	RoundResultCommittedV1 = "tab.round.result.committed.v1"

	// RoundResultFailedV1 is published when ingestion rejects a submission.
	RoundResultFailedV1 = "tab.round.result.failed.v1"
)

// SpeakerScore carries one side's speaker points in tenths.
type SpeakerScore struct {
	RegistrationID sharedtypes.RegistrationID `json:"registration_id"`
	Side           sharedtypes.Side           `json:"side"`
	ScoreTenths    sharedtypes.SpeakerTenths  `json:"score_tenths"`
}

// PairingResultSubmittedPayloadV1 is the raw per-pairing outcome.
type PairingResultSubmittedPayloadV1 struct {
	TournamentID  sharedtypes.TournamentID  `json:"tournament_id"`
	PairingID     sharedtypes.PairingID     `json:"pairing_id"`
	Winner        sharedtypes.WinnerSide    `json:"winner"`
	Forfeit       bool                      `json:"forfeit"`
	DQ            bool                      `json:"dq"`
	Bye           bool                      `json:"bye"`
	SpeakerScores []SpeakerScore            `json:"speaker_scores"`
}

// RoundResultCommittedPayloadV1 announces a stored result.
type RoundResultCommittedPayloadV1 struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	RoundID      sharedtypes.RoundID      `json:"round_id"`
	PairingID    sharedtypes.PairingID    `json:"pairing_id"`
	CommittedAt  time.Time                `json:"committed_at"`
}

// RoundResultFailedPayloadV1 reports a rejected submission with enough detail
// to locate the source data.
type RoundResultFailedPayloadV1 struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	PairingID    sharedtypes.PairingID    `json:"pairing_id"`
	Reason       string                   `json:"reason"`
}
