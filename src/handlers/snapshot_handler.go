package handlers

import (
	"net/http"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/services"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

type SnapshotHandler struct {
	snapshotRecorder services.SnapshotRecorder
}

func NewSnapshotHandler(snapshotRecorder services.SnapshotRecorder) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotRecorder: snapshotRecorder,
	}
}

// HandleGetSnapshots returns the persisted long-run snapshot history.
func (h *SnapshotHandler) HandleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	snapshots, err := h.snapshotRecorder.ListSnapshots(userID)
	if err != nil {
		logger.L.Error("Failed to list snapshots", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error retrieving snapshots", http.StatusInternalServerError)
		return
	}
	if snapshots == nil {
		snapshots = []models.PortfolioSnapshot{}
	}
	utils.SendJSON(w, snapshots)
}

// HandleRecordSnapshot forces an immediate snapshot outside the daily
// schedule.
func (h *SnapshotHandler) HandleRecordSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	if err := h.snapshotRecorder.RecordSnapshot(userID); err != nil {
		logger.L.Error("Failed to record snapshot", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error recording snapshot", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"status": "recorded"})
}
