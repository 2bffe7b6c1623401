package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/portfolio"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/store"
)

const (
	ckValuation = "valuation_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type portfolioServiceImpl struct {
	txStore     *store.TransactionStore
	reportCache *cache.Cache
}

// NewPortfolioService wraps the valuation engine with per-user result
// caching. The cache exists purely for performance: correctness comes from
// recomputing the valuation from the full history, so invalidation on write
// is wholesale rather than clever.
func NewPortfolioService(txStore *store.TransactionStore, reportCache *cache.Cache) PortfolioService {
	return &portfolioServiceImpl{
		txStore:     txStore,
		reportCache: reportCache,
	}
}

// getValuation replays the full history, via cache.
func (s *portfolioServiceImpl) getValuation(userID int64) (*portfolio.Valuation, error) {
	cacheKey := fmt.Sprintf(ckValuation, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for valuation", "userID", userID)
		return cached.(*portfolio.Valuation), nil
	}

	logger.L.Info("Cache miss for valuation, replaying transaction history", "userID", userID)
	txs, err := s.txStore.Fetch(userID, store.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	valuation := portfolio.Run(txs)
	for _, anomaly := range valuation.Anomalies {
		logger.L.Warn("Ledger anomaly during replay", "userID", userID, "anomaly", anomaly.String())
	}

	s.reportCache.Set(cacheKey, valuation, DefaultCacheExpiration)
	return valuation, nil
}

func (s *portfolioServiceImpl) GetHoldings(userID int64) ([]models.Holding, error) {
	valuation, err := s.getValuation(userID)
	if err != nil {
		return nil, err
	}
	return valuation.Holdings(), nil
}

func (s *portfolioServiceImpl) GetTimeSeries(userID int64, markets []string) ([]models.PortfolioSnapshotPoint, error) {
	valuation, err := s.getValuation(userID)
	if err != nil {
		return nil, err
	}
	return valuation.TimeSeries(markets), nil
}

func (s *portfolioServiceImpl) GetDividendIncome(userID int64) ([]models.DividendIncome, error) {
	valuation, err := s.getValuation(userID)
	if err != nil {
		return nil, err
	}
	return valuation.DividendIncome(), nil
}

func (s *portfolioServiceImpl) GetAllocation(userID int64, dimension string) ([]models.AllocationSlice, error) {
	if dimension == portfolio.DimensionType {
		txs, err := s.GetTransactions(userID, store.TransactionFilter{})
		if err != nil {
			return nil, err
		}
		return portfolio.TransactionsByType(txs), nil
	}

	valuation, err := s.getValuation(userID)
	if err != nil {
		return nil, err
	}
	slices := portfolio.AllocationByDimension(valuation.Holdings(), dimension)
	if slices == nil {
		return nil, fmt.Errorf("unknown allocation dimension: %s", dimension)
	}
	return slices, nil
}

func (s *portfolioServiceImpl) GetTransactions(userID int64, filter store.TransactionFilter) ([]models.CanonicalTransaction, error) {
	txs, err := s.txStore.Fetch(userID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	return txs, nil
}

func (s *portfolioServiceImpl) GetTotalValue(userID int64) (float64, error) {
	valuation, err := s.getValuation(userID)
	if err != nil {
		return 0, err
	}
	return valuation.TotalValue(), nil
}

// InvalidateUserCache clears the cached valuation, forcing a full replay on
// the next read. Called after every write to the user's history.
func (s *portfolioServiceImpl) InvalidateUserCache(userID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckValuation, userID))
	logger.L.Info("Invalidated valuation cache for user", "userID", userID)
}
