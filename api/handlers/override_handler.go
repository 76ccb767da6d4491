package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	ledgerservice "github.com/open-forensics/tab-service/app/modules/ledger/application"
	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// OverrideHandler accepts operator overrides and serves the audit trail.
type OverrideHandler struct {
	ledger ledgerservice.Service
}

func NewOverrideHandler(ledger ledgerservice.Service) *OverrideHandler {
	return &OverrideHandler{ledger: ledger}
}

// Apply submits one override. Business rejections (missing reason, unknown
// target) come back as 422 with the failure payload; a committed override
// returns the audit entry reference.
func (h *OverrideHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var override ledgerservice.Override
	if err := json.NewDecoder(r.Body).Decode(&override); err != nil {
		respondError(w, http.StatusBadRequest, "failed to decode override: "+err.Error())
		return
	}

	result, err := h.ledger.Apply(r.Context(), override)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to apply override: "+err.Error())
		return
	}
	if result.IsFailure() {
		respondJSON(w, http.StatusUnprocessableEntity, result.Failure)
		return
	}

	respondJSON(w, http.StatusCreated, result.Success)
}

// History returns the tournament's full audit trail in creation order.
func (h *OverrideHandler) History(w http.ResponseWriter, r *http.Request) {
	tournamentID := sharedtypes.TournamentID(chi.URLParam(r, "tournamentID"))

	entries, err := h.ledger.History(r.Context(), tournamentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load history: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// EntityHistory returns the audit trail for one entity.
func (h *OverrideHandler) EntityHistory(w http.ResponseWriter, r *http.Request) {
	entityType := ledgerdb.EntityType(chi.URLParam(r, "entityType"))

	entityID, err := uuid.Parse(chi.URLParam(r, "entityID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entity id: "+err.Error())
		return
	}

	entries, err := h.ledger.EntityHistory(r.Context(), entityType, entityID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load entity history: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// Routes sets up the override routes.
func (h *OverrideHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Apply)
	r.Get("/history/{tournamentID}", h.History)
	r.Get("/history/{tournamentID}/{entityType}/{entityID}", h.EntityHistory)
	return r
}
