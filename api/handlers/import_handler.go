package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	reconcileservice "github.com/open-forensics/tab-service/app/modules/reconcile/application"
	sharedtypes "github.com/open-forensics/tab-service/app/shared/types"
)

// maxImportSize caps uploaded pairing sheets at 8 MiB.
const maxImportSize = 8 << 20

// ImportHandler drives the legacy import flow: upload a sheet, review the
// proposal, confirm it.
type ImportHandler struct {
	reconcile reconcileservice.Service
}

func NewImportHandler(reconcile reconcileservice.Service) *ImportHandler {
	return &ImportHandler{reconcile: reconcile}
}

// Propose accepts a multipart upload ("file" field) and returns the matched
// proposal for operator review. Nothing is written.
func (h *ImportHandler) Propose(w http.ResponseWriter, r *http.Request) {
	tournamentID := sharedtypes.TournamentID(chi.URLParam(r, "tournamentID"))

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "upload needs a \"file\" field: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read upload: "+err.Error())
		return
	}

	result, err := h.reconcile.Propose(r.Context(), tournamentID, header.Filename, data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to propose import: "+err.Error())
		return
	}
	if result.IsFailure() {
		respondJSON(w, http.StatusUnprocessableEntity, result.Failure)
		return
	}

	respondJSON(w, http.StatusOK, result.Success)
}

// Confirm commits a reviewed proposal. A partial commit returns 409 with the
// per-row report; the operator resolves it before retrying with a new
// sequence.
func (h *ImportHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	tournamentID := sharedtypes.TournamentID(chi.URLParam(r, "tournamentID"))

	var req reconcileservice.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to decode confirm request: "+err.Error())
		return
	}
	if req.Proposal.TournamentID != tournamentID {
		respondError(w, http.StatusBadRequest, "proposal tournament does not match URL")
		return
	}

	result, err := h.reconcile.Confirm(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to confirm import: "+err.Error())
		return
	}
	if result.IsFailure() {
		status := http.StatusUnprocessableEntity
		if result.Failure.RoundID != nil {
			status = http.StatusConflict
		}
		respondJSON(w, status, result.Failure)
		return
	}

	respondJSON(w, http.StatusCreated, result.Success)
}

// Routes sets up the import routes.
func (h *ImportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{tournamentID}/propose", h.Propose)
	r.Post("/{tournamentID}/confirm", h.Confirm)
	return r
}
