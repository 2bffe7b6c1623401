package handlers

import (
	"net/http"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/store"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

// ReferenceHandler serves the reference data the import pipeline accumulates:
// the securities and brokers transactions point at. Both collections are
// shared, not user-scoped.
type ReferenceHandler struct {
	refStore *store.ReferenceStore
}

func NewReferenceHandler(refStore *store.ReferenceStore) *ReferenceHandler {
	return &ReferenceHandler{
		refStore: refStore,
	}
}

// HandleGetSecurities lists every security seen across imports.
func (h *ReferenceHandler) HandleGetSecurities(w http.ResponseWriter, r *http.Request) {
	securities, err := h.refStore.ListSecurities()
	if err != nil {
		logger.L.Error("Failed to list securities", "error", err)
		utils.SendJSONError(w, "Error retrieving securities", http.StatusInternalServerError)
		return
	}
	if securities == nil {
		securities = []models.Security{}
	}
	utils.SendJSON(w, securities)
}

// HandleGetBrokers lists every broker named on an import or manual entry.
func (h *ReferenceHandler) HandleGetBrokers(w http.ResponseWriter, r *http.Request) {
	brokers, err := h.refStore.ListBrokers()
	if err != nil {
		logger.L.Error("Failed to list brokers", "error", err)
		utils.SendJSONError(w, "Error retrieving brokers", http.StatusInternalServerError)
		return
	}
	if brokers == nil {
		brokers = []models.Broker{}
	}
	utils.SendJSON(w, brokers)
}
