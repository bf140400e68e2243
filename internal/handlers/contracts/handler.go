package contracts

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/services/run"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/handlers"
	"gitlab.com/equivcheck-2025.net/internal/handlers/response"
)

// ContractHandler handles contract API requests
type ContractHandler struct {
	runService run.IRunService
	logger     primary.Logger
}

func NewContractHandler(runService run.IRunService, logger primary.Logger) *ContractHandler {
	return &ContractHandler{
		runService: runService,
		logger:     logger,
	}
}

// RegisterRoutes registers the API routes for ContractHandler
func (h *ContractHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/contracts", h.ListContracts).Methods("GET")
	router.HandleFunc("/contracts/{name}/failing-seeds", h.FailingSeeds).Methods("GET")
	router.HandleFunc("/contracts/{name}/override", h.SaveOverride).Methods("PUT")
}

type ListContractsResponse struct {
	Contracts []domain.ContractInfo `json:"contracts"`
}

type FailingSeedsResponse struct {
	Contract string  `json:"contract"`
	Seeds    []int64 `json:"seeds"`
}

func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	infos, err := h.runService.ListContracts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list contracts", "error", err)
		handlers.ResponseServiceError(w, "Failed to list contracts", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, ListContractsResponse{Contracts: infos})
}

func (h *ContractHandler) FailingSeeds(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	seeds, err := h.runService.FailingSeeds(r.Context(), name)
	if err != nil {
		h.logger.Error("Failed to get failing seeds", "contract", name, "error", err)
		handlers.ResponseServiceError(w, "Failed to get failing seeds", err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, FailingSeedsResponse{Contract: name, Seeds: seeds})
}

// SaveOverride replaces a contract's stored override. The body is a partial
// run configuration; omitted fields inherit the declared values.
func (h *ContractHandler) SaveOverride(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var override domain.RunConfigOverride
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&override); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		handlers.ResponseError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.runService.SaveOverride(r.Context(), name, &override); err != nil {
		h.logger.Error("Failed to save override", "contract", name, "error", err)
		handlers.ResponseServiceError(w, "Failed to save override", err)
		return
	}
	response.WriteNoContent(w)
}
