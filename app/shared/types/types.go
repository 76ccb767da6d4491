package sharedtypes

import (
	"database/sql/driver"

	"github.com/google/uuid"
)

// TournamentID identifies a tournament. Tournaments are owned by the
// registration platform; the tab core only scopes data by them.
type TournamentID string

func (id TournamentID) String() string { return string(id) }

// RegistrationID identifies a competitor entry on the canonical roster.
type RegistrationID uuid.UUID

func (id RegistrationID) String() string { return uuid.UUID(id).String() }

// UUID returns the underlying uuid.UUID.
func (id RegistrationID) UUID() uuid.UUID { return uuid.UUID(id) }

func (id RegistrationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *RegistrationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id RegistrationID) Value() (driver.Value, error) { return uuid.UUID(id).Value() }

func (id *RegistrationID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }

// RoundID identifies a round within a tournament.
type RoundID uuid.UUID

func (id RoundID) String() string { return uuid.UUID(id).String() }

func (id RoundID) UUID() uuid.UUID { return uuid.UUID(id) }

func (id RoundID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *RoundID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id RoundID) Value() (driver.Value, error) { return uuid.UUID(id).Value() }

func (id *RoundID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }

// PairingID identifies a single aff/neg pairing within a round.
type PairingID uuid.UUID

func (id PairingID) String() string { return uuid.UUID(id).String() }

func (id PairingID) UUID() uuid.UUID { return uuid.UUID(id) }

func (id PairingID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *PairingID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id PairingID) Value() (driver.Value, error) { return uuid.UUID(id).Value() }

func (id *PairingID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }

// UserID identifies the acting operator (tab staff). Opaque to this core;
// authentication lives upstream.
type UserID string

func (id UserID) String() string { return string(id) }

// Side is one of the two sides of a pairing.
type Side string

const (
	SideAff Side = "aff"
	SideNeg Side = "neg"
)

// Opposite returns the other side of a pairing.
func (s Side) Opposite() Side {
	if s == SideAff {
		return SideNeg
	}
	return SideAff
}

// SpeakerTenths is a speaker score in tenths of a point. Scores are summed
// as integers so repeated recomputation never drifts; division happens only
// at display time.
type SpeakerTenths int

// Points returns the score in points for display.
func (t SpeakerTenths) Points() float64 { return float64(t) / 10 }

// WinnerSide is the recorded outcome of a pairing.
type WinnerSide string

const (
	WinnerAff  WinnerSide = "aff"
	WinnerNeg  WinnerSide = "neg"
	WinnerNone WinnerSide = "none"
)

// RoundStatus tracks the lifecycle of a round.
type RoundStatus string

const (
	RoundUpcoming   RoundStatus = "upcoming"
	RoundInProgress RoundStatus = "in_progress"
	RoundCompleted  RoundStatus = "completed"
)
