package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	pairingdb "github.com/open-forensics/tab-service/app/modules/pairings/infrastructure/repositories"
	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// TestDataGenerator produces seedable fake tournament data for integration
// tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a generator. Pass a seed for reproducible data.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// GenerateRegistrations creates count roster entries for a tournament.
func (g *TestDataGenerator) GenerateRegistrations(tournamentID sharedtypes.TournamentID, count int) []rosterdb.Registration {
	regs := make([]rosterdb.Registration, count)
	for i := range regs {
		regs[i] = rosterdb.Registration{
			ID:           sharedtypes.RegistrationID(uuid.New()),
			TournamentID: tournamentID,
			DisplayName:  g.faker.Name(),
			PartnerName:  g.faker.Name(),
			School:       fmt.Sprintf("%s High School", g.faker.LastName()),
		}
	}
	return regs
}

// GenerateRound creates one round row for a tournament.
func (g *TestDataGenerator) GenerateRound(tournamentID sharedtypes.TournamentID, sequence int) pairingdb.Round {
	return pairingdb.Round{
		ID:           sharedtypes.RoundID(uuid.New()),
		TournamentID: tournamentID,
		Sequence:     sequence,
		Status:       sharedtypes.RoundCompleted,
	}
}

// GeneratePairing creates one pairing row within a round.
func (g *TestDataGenerator) GeneratePairing(roundID sharedtypes.RoundID, aff, neg sharedtypes.RegistrationID) pairingdb.Pairing {
	return pairingdb.Pairing{
		ID:      sharedtypes.PairingID(uuid.New()),
		RoundID: roundID,
		AffID:   aff,
		NegID:   neg,
		Status:  pairingdb.PairingScheduled,
		Room:    g.faker.Numerify("Room ###"),
	}
}

// GenerateReason produces an audit reason string.
func (g *TestDataGenerator) GenerateReason() string {
	return g.faker.Sentence(6)
}

// GenerateUserID produces a tab-staff user id.
func (g *TestDataGenerator) GenerateUserID() sharedtypes.UserID {
	return sharedtypes.UserID(g.faker.Username())
}

// GenerateTournamentID produces a unique tournament slug so tests sharing one
// database never collide.
func (g *TestDataGenerator) GenerateTournamentID(prefix string) sharedtypes.TournamentID {
	return sharedtypes.TournamentID(fmt.Sprintf("%s-%s", prefix, g.faker.LetterN(8)))
}
