package handlers

import (
	"net/http"
	"strings"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/portfolio"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/services"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

type PortfolioHandler struct {
	portfolioService services.PortfolioService
}

func NewPortfolioHandler(portfolioService services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// HandleGetHoldings returns the current-holdings summary. Holdings only
// change on writes, so responses carry an ETag and honour If-None-Match.
func (h *PortfolioHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	holdings, err := h.portfolioService.GetHoldings(userID)
	if err != nil {
		logger.L.Error("Failed to compute holdings", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error computing holdings", http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}

	if etag, err := utils.GenerateETag(holdings); err == nil {
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	utils.SendJSON(w, holdings)
}

// HandleGetTimeSeries returns the portfolio-value series for charting. An
// optional "markets" query parameter (comma separated) slices the series to a
// subset of exchanges.
func (h *PortfolioHandler) HandleGetTimeSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	var markets []string
	if raw := r.URL.Query().Get("markets"); raw != "" {
		for _, market := range strings.Split(raw, ",") {
			if market = strings.TrimSpace(market); market != "" {
				markets = append(markets, market)
			}
		}
	}

	series, err := h.portfolioService.GetTimeSeries(userID, markets)
	if err != nil {
		logger.L.Error("Failed to compute time series", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error computing portfolio time series", http.StatusInternalServerError)
		return
	}
	if series == nil {
		series = []models.PortfolioSnapshotPoint{}
	}
	utils.SendJSON(w, series)
}

// HandleGetDividends returns per-security dividend income with franking
// credits.
func (h *PortfolioHandler) HandleGetDividends(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	income, err := h.portfolioService.GetDividendIncome(userID)
	if err != nil {
		logger.L.Error("Failed to compute dividend income", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error computing dividend income", http.StatusInternalServerError)
		return
	}
	if income == nil {
		income = []models.DividendIncome{}
	}
	utils.SendJSON(w, income)
}

// HandleGetAllocation returns a grouping reduction for summary charts. The
// "by" query parameter selects the dimension: market, currency, security or
// type.
func (h *PortfolioHandler) HandleGetAllocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user scope not found in request context", http.StatusUnauthorized)
		return
	}

	dimension := r.URL.Query().Get("by")
	if dimension == "" {
		dimension = portfolio.DimensionMarket
	}

	slices, err := h.portfolioService.GetAllocation(userID, dimension)
	if err != nil {
		logger.L.Warn("Failed to compute allocation", "userID", userID, "dimension", dimension, "error", err)
		utils.SendJSONError(w, "Error computing allocation: "+err.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, slices)
}
