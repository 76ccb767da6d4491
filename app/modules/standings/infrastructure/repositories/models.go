package standingsdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// ComputedStanding is one persisted standing row. The whole tournament's set
// is replaced on every recompute; rows are never patched individually, so a
// stored snapshot is always internally consistent.
type ComputedStanding struct {
	bun.BaseModel `bun:"table:computed_standings,alias:cs"`

	ID             uuid.UUID                  `bun:"id,pk,type:uuid"`
	TournamentID   sharedtypes.TournamentID   `bun:"tournament_id,notnull"`
	RegistrationID sharedtypes.RegistrationID `bun:"registration_id,notnull,type:uuid"`
	DisplayName    string                     `bun:"display_name,notnull"`
	Wins           int                        `bun:"wins,notnull"`
	Losses         int                        `bun:"losses,notnull"`
	TotalTenths    sharedtypes.SpeakerTenths  `bun:"total_tenths,notnull"`
	RoundsPlayed   int                        `bun:"rounds_played,notnull"`
	RoundsScored   int                        `bun:"rounds_scored,notnull"`
	DQ             bool                       `bun:"dq,notnull,default:false"`
	Rank           int                        `bun:"rank,notnull"`
	DecidedBy      string                     `bun:"decided_by,nullzero"`
	Trace          []string                   `bun:"trace,type:jsonb,nullzero"`
	ComputedAt     time.Time                  `bun:"computed_at,notnull"`
}
