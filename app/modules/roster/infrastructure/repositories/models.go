package rosterdb

import (
	"time"

	"github.com/uptrace/bun"

	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// Registration is a canonical roster entry. The registration platform owns
// these rows; the tab core reads them and only ever writes the advisory
// side-count counters.
type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:reg"`

	ID           sharedtypes.RegistrationID `bun:"id,pk,type:uuid"`
	TournamentID sharedtypes.TournamentID   `bun:"tournament_id,notnull"`
	DisplayName  string                     `bun:"display_name,notnull"`
	PartnerName  string                     `bun:"partner_name,nullzero"`
	School       string                     `bun:"school,nullzero"`
	Withdrawn    bool                       `bun:"withdrawn,notnull,default:false"`
	AffCount     int                        `bun:"aff_count,notnull,default:0"`
	NegCount     int                        `bun:"neg_count,notnull,default:0"`
	CreatedAt    time.Time                  `bun:",nullzero,notnull,default:current_timestamp"`
}
