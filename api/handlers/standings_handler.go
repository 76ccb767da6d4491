package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	standingsservice "github.com/open-forensics/tab-service/app/modules/standings/application"
	standingsqueue "github.com/open-forensics/tab-service/app/modules/standings/infrastructure/queue"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// StandingsHandler serves the published standings snapshot and the manual
// recompute trigger.
type StandingsHandler struct {
	standings standingsservice.Service
	scheduler standingsqueue.Scheduler
}

func NewStandingsHandler(standings standingsservice.Service, scheduler standingsqueue.Scheduler) *StandingsHandler {
	return &StandingsHandler{standings: standings, scheduler: scheduler}
}

// standingRowResponse is one row of the public standings shape. Speaker
// points go out in points, not stored tenths.
type standingRowResponse struct {
	RegistrationID sharedtypes.RegistrationID `json:"registration_id"`
	DisplayName    string                     `json:"display_name"`
	Wins           int                        `json:"wins"`
	Losses         int                        `json:"losses"`
	TotalSpeaks    float64                    `json:"total_speaks"`
	AvgSpeaks      float64                    `json:"avg_speaks"`
	Rank           int                        `json:"rank"`
	DQ             bool                       `json:"dq,omitempty"`
	TiebreakTrace  []string                   `json:"tiebreak_trace,omitempty"`
}

type standingsResponse struct {
	TournamentID sharedtypes.TournamentID `json:"tournament_id"`
	ComputedAt   time.Time                `json:"computed_at"`
	Standings    []standingRowResponse    `json:"standings"`
}

// GetStandings returns the stored snapshot in rank order. The snapshot may
// trail recent results by up to the recompute debounce window; the
// snapshot-level computed_at tells the operator how stale it is.
func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID := sharedtypes.TournamentID(chi.URLParam(r, "tournamentID"))

	rows, err := h.standings.GetStandings(r.Context(), tournamentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load standings: "+err.Error())
		return
	}
	if len(rows) == 0 {
		respondError(w, http.StatusNotFound, "no standings snapshot for tournament "+string(tournamentID))
		return
	}

	resp := standingsResponse{
		TournamentID: tournamentID,
		// Snapshots are replaced wholesale, so every row shares one
		// computation time.
		ComputedAt: rows[0].ComputedAt,
		Standings:  make([]standingRowResponse, 0, len(rows)),
	}
	for _, row := range rows {
		calc := standingsservice.StandingRow{
			TotalTenths:  row.TotalTenths,
			RoundsScored: row.RoundsScored,
		}
		resp.Standings = append(resp.Standings, standingRowResponse{
			RegistrationID: row.RegistrationID,
			DisplayName:    row.DisplayName,
			Wins:           row.Wins,
			Losses:         row.Losses,
			TotalSpeaks:    row.TotalTenths.Points(),
			AvgSpeaks:      calc.AveragePoints(),
			Rank:           row.Rank,
			DQ:             row.DQ,
			TiebreakTrace:  row.Trace,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

// Recompute enqueues a recompute job. Redundant requests inside the debounce
// window coalesce into one run.
func (h *StandingsHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	tournamentID := sharedtypes.TournamentID(chi.URLParam(r, "tournamentID"))
	if tournamentID == "" {
		respondError(w, http.StatusBadRequest, "tournament id is required")
		return
	}

	if err := h.scheduler.EnqueueRecompute(r.Context(), tournamentID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to enqueue recompute: "+err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "recompute scheduled"})
}

// Routes sets up the standings routes.
func (h *StandingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{tournamentID}", h.GetStandings)
	r.Post("/{tournamentID}/recompute", h.Recompute)
	return r
}
