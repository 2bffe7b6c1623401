package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/security/validation"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/services"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/store"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

type TransactionHandler struct {
	importService    services.ImportService
	portfolioService services.PortfolioService
}

func NewTransactionHandler(importService services.ImportService, portfolioService services.PortfolioService) *TransactionHandler {
	return &TransactionHandler{
		importService:    importService,
		portfolioService: portfolioService,
	}
}

// HandleGetTransactions lists the stored history, optionally filtered by
// symbol, exchange or broker_id query parameters.
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	filter := store.TransactionFilter{
		Symbol:   r.URL.Query().Get("symbol"),
		Exchange: r.URL.Query().Get("exchange"),
	}
	if brokerStr := r.URL.Query().Get("broker_id"); brokerStr != "" {
		brokerID, err := strconv.ParseInt(brokerStr, 10, 64)
		if err != nil {
			utils.SendJSONError(w, "Invalid broker_id query parameter", http.StatusBadRequest)
			return
		}
		filter.BrokerID = brokerID
	}

	txs, err := h.portfolioService.GetTransactions(userID, filter)
	if err != nil {
		logger.L.Error("Failed to fetch transactions", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error retrieving transactions", http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.CanonicalTransaction{}
	}
	utils.SendJSON(w, txs)
}

// HandleCreateTransaction records one manually-entered transaction.
func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	var payload struct {
		models.CanonicalTransaction
		Broker string `json:"broker"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.importService.CreateTransaction(userID, payload.CanonicalTransaction, payload.Broker)
	if err != nil {
		if errors.Is(err, validation.ErrValidationFailed) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Failed to create transaction", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error creating transaction", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	utils.SendJSON(w, result)
}

// HandleDeleteTransaction removes one transaction by id; the history is
// replayed from scratch afterwards, so derived numbers stay consistent.
func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	if err := h.importService.DeleteTransaction(userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Warn("Failed to delete transaction", "userID", userID, "transactionID", id, "error", err)
		utils.SendJSONError(w, "Error deleting transaction", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"status": "deleted"})
}

// HandleDeleteBatch undoes one csv import wholesale.
func (h *TransactionHandler) HandleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	batchID := r.PathValue("batchID")
	if batchID == "" {
		utils.SendJSONError(w, "Missing batch id", http.StatusBadRequest)
		return
	}

	deleted, err := h.importService.DeleteBatch(userID, batchID)
	if err != nil {
		logger.L.Error("Failed to delete import batch", "userID", userID, "batchID", batchID, "error", err)
		utils.SendJSONError(w, "Error deleting import batch", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]interface{}{"status": "deleted", "transactions": deleted})
}

// HandleDeleteAllTransactions wipes the user's entire history.
func (h *TransactionHandler) HandleDeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	deleted, err := h.importService.DeleteAllTransactions(userID)
	if err != nil {
		logger.L.Error("Failed to delete all transactions", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error deleting transactions", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]interface{}{"status": "deleted", "transactions": deleted})
}
