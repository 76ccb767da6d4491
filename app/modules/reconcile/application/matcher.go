package reconcileservice

import (
	"bytes"
	"sort"
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	strutilmetrics "github.com/adrg/strutil/metrics"

	rosterdb "github.com/open-forensics/tab-service/app/modules/roster/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// MatchBand labels a match confidence for operator display.
type MatchBand string

const (
	BandExact   MatchBand = "exact"
	BandGood    MatchBand = "good"
	BandLow     MatchBand = "low"
	BandNoMatch MatchBand = "no_match"
)

// Candidate is one roster registration scored against a sheet name.
type Candidate struct {
	RegistrationID sharedtypes.RegistrationID `json:"registration_id"`
	DisplayName    string                     `json:"display_name"`
	PartnerName    string                     `json:"partner_name,omitempty"`
	Confidence     float64                    `json:"confidence"`
}

// MatchResult holds the ranked candidates for one side of one sheet row.
type MatchResult struct {
	Query      string      `json:"query"`
	Band       MatchBand   `json:"band"`
	Candidates []Candidate `json:"candidates"`
}

// Best returns the top-ranked candidate, or nil when nothing scored.
func (r MatchResult) Best() *Candidate {
	if len(r.Candidates) == 0 {
		return nil
	}
	return &r.Candidates[0]
}

// Matcher scores sheet names against roster registrations. It is a pure
// function of its inputs and the configured thresholds; both underlying
// metrics are monotonic in edit distance, so a closer textual match never
// scores below a more distant one.
type Matcher struct {
	exactThreshold float64
	goodThreshold  float64
	jaro           *strutilmetrics.JaroWinkler
	lev            *strutilmetrics.Levenshtein
}

// NewMatcher creates a matcher with the configured band thresholds.
func NewMatcher(exactThreshold, goodThreshold float64) *Matcher {
	return &Matcher{
		exactThreshold: exactThreshold,
		goodThreshold:  goodThreshold,
		jaro:           strutilmetrics.NewJaroWinkler(),
		lev:            strutilmetrics.NewLevenshtein(),
	}
}

// Match ranks every registration against the sheet name and assigns a band
// from the best score. Ties rank deterministically by registration id.
func (m *Matcher) Match(name string, regs []rosterdb.Registration) MatchResult {
	query := normalizeName(name)
	result := MatchResult{Query: name, Band: BandNoMatch}
	if query == "" {
		return result
	}

	for _, reg := range regs {
		score := m.registrationScore(query, reg)
		if score <= 0 {
			continue
		}
		result.Candidates = append(result.Candidates, Candidate{
			RegistrationID: reg.ID,
			DisplayName:    reg.DisplayName,
			PartnerName:    reg.PartnerName,
			Confidence:     score,
		})
	}

	sort.Slice(result.Candidates, func(i, j int) bool {
		a, b := result.Candidates[i], result.Candidates[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		aid, bid := a.RegistrationID.UUID(), b.RegistrationID.UUID()
		return bytes.Compare(aid[:], bid[:]) < 0
	})

	if best := result.Best(); best != nil {
		switch {
		case best.Confidence >= m.exactThreshold:
			result.Band = BandExact
		case best.Confidence >= m.goodThreshold:
			result.Band = BandGood
		default:
			result.Band = BandLow
		}
	}
	return result
}

// registrationScore takes the best score over every way the registration
// could be written on a sheet: the display name alone, the partner name
// alone, and the combined team name in either member order.
func (m *Matcher) registrationScore(query string, reg rosterdb.Registration) float64 {
	targets := []string{reg.DisplayName}
	if reg.PartnerName != "" {
		targets = append(targets,
			reg.PartnerName,
			reg.DisplayName+" "+reg.PartnerName,
			reg.PartnerName+" "+reg.DisplayName,
		)
	}

	best := 0.0
	for _, target := range targets {
		if s := m.score(query, normalizeName(target)); s > best {
			best = s
		}
	}
	return best
}

// score blends JaroWinkler (forgiving of suffix noise) with normalized
// Levenshtein (strict edit distance) so neither metric's blind spot
// dominates.
func (m *Matcher) score(query, target string) float64 {
	if query == "" || target == "" {
		return 0
	}
	if query == target {
		return 1
	}
	jw := strutil.Similarity(query, target, m.jaro)
	lv := strutil.Similarity(query, target, m.lev)
	return (jw + lv) / 2
}

// normalizeName lowercases, strips punctuation, and collapses whitespace so
// "Smith/Jones" and "smith & jones" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
