package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/database"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/parsers"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/store"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

type testEnv struct {
	txStore          *store.TransactionStore
	importService    ImportService
	portfolioService PortfolioService
	snapshotService  *snapshotServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	db := database.DB
	t.Cleanup(func() { db.Close() })

	txStore := store.NewTransactionStore(db)
	refStore := store.NewReferenceStore(db)
	snapshotStore := store.NewSnapshotStore(db)

	portfolioService := NewPortfolioService(txStore, cache.New(DefaultCacheExpiration, CacheCleanupInterval))
	snapshotService := NewSnapshotService(txStore, snapshotStore, portfolioService)
	importService := NewImportService(txStore, refStore, portfolioService, snapshotService)

	return &testEnv{
		txStore:          txStore,
		importService:    importService,
		portfolioService: portfolioService,
		snapshotService:  snapshotService,
	}
}

const genericCSV = "Date,Type,Symbol,Exchange,Quantity,Price,Fees,Currency,Total Amount,Notes\n" +
	"2024-01-02,buy,VAS,ASX,100,10.00,5.00,AUD,1005.00,\n" +
	"2024-02-02,sell,VAS,ASX,40,15.00,2.00,AUD,598.00,\n" +
	"2024-03-02,Dividend,VAS,ASX,,50.00,,AUD,50.00,Franking credit $21.43\n"

func TestProcessUploadEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.importService.ProcessUpload(strings.NewReader(genericCSV), 1, "generic", "SelfWealth")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Parsed)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 0, result.DuplicatesSkipped)
	assert.NotEmpty(t, result.BatchID)

	require.Len(t, result.Holdings, 1)
	holding := result.Holdings[0]
	assert.Equal(t, "VAS", holding.Symbol)
	assert.InDelta(t, 60.0, holding.Quantity, 1e-9)
	assert.InDelta(t, 603.0, holding.CostBasis, 1e-9)
	assert.InDelta(t, 196.0, holding.RealizedGainLoss, 1e-9)
	assert.InDelta(t, 50.0, holding.DividendsReceived, 1e-9)
	assert.InDelta(t, 900.0, result.TotalValue, 1e-9)

	// An import also records today's snapshot.
	snapshots, err := env.snapshotService.ListSnapshots(1)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.InDelta(t, 900.0, snapshots[0].TotalValue, 1e-9)
}

func TestProcessUploadReimportIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.importService.ProcessUpload(strings.NewReader(genericCSV), 1, "generic", "")
	require.NoError(t, err)

	result, err := env.importService.ProcessUpload(strings.NewReader(genericCSV), 1, "generic", "")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Parsed)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 3, result.DuplicatesSkipped)

	txs, err := env.txStore.Fetch(1, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}

func TestProcessUploadFormatMismatch(t *testing.T) {
	env := newTestEnv(t)

	csvData := "Date,Symbol\n2024-01-02,VAS\n"
	_, err := env.importService.ProcessUpload(strings.NewReader(csvData), 1, "generic", "")

	var mismatch *parsers.FormatMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Missing, "Quantity")

	// Nothing was written.
	txs, fetchErr := env.txStore.Fetch(1, store.TransactionFilter{})
	require.NoError(t, fetchErr)
	assert.Empty(t, txs)
}

func TestProcessUploadBadRowWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	csvData := "Date,Type,Symbol,Exchange,Quantity,Price\n" +
		"2024-01-02,buy,VAS,ASX,100,10.00\n" +
		"2024-01-03,buy,VGS,ASX,-5,20.00\n"
	_, err := env.importService.ProcessUpload(strings.NewReader(csvData), 1, "generic", "")

	var rowErr *parsers.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)

	txs, fetchErr := env.txStore.Fetch(1, store.TransactionFilter{})
	require.NoError(t, fetchErr)
	assert.Empty(t, txs)
}

func TestProcessUploadUnknownSource(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.importService.ProcessUpload(strings.NewReader(genericCSV), 1, "etrade", "")
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestCreateTransactionNormalizesInput(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.importService.CreateTransaction(1, models.CanonicalTransaction{
		Symbol:   "VAS",
		Exchange: "ASX",
		Type:     "buy",
		Date:     "02/01/2024",
		Quantity: models.Float64Ptr(10),
		Price:    5,
		Currency: "AUD",
	}, "CommSec")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	txs, err := env.txStore.Fetch(1, store.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TypeBuy, txs[0].Type)
	assert.Equal(t, "2024-01-02", txs[0].Date)
	assert.InDelta(t, 1.0, txs[0].ExchangeRate, 1e-9)
	assert.NotZero(t, txs[0].BrokerID)
}

func TestDeleteTransactionRecomputesValuation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.importService.ProcessUpload(strings.NewReader(genericCSV), 1, "generic", "")
	require.NoError(t, err)

	before, err := env.portfolioService.GetTotalValue(1)
	require.NoError(t, err)
	assert.InDelta(t, 900.0, before, 1e-9)

	txs, err := env.txStore.Fetch(1, store.TransactionFilter{})
	require.NoError(t, err)
	// Delete the sell; the remaining 100 units are valued at the last
	// observed price of the surviving trade history.
	var sellID int64
	for _, tx := range txs {
		if tx.Type == models.TypeSell {
			sellID = tx.ID
		}
	}
	require.NotZero(t, sellID)
	require.NoError(t, env.importService.DeleteTransaction(1, sellID))

	after, err := env.portfolioService.GetTotalValue(1)
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, after, 1e-9)
}

func TestDeleteBatchUndoesUpload(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.importService.ProcessUpload(strings.NewReader(genericCSV), 1, "generic", "")
	require.NoError(t, err)

	otherCSV := "Date,Type,Symbol,Exchange,Quantity,Price\n2024-01-05,buy,VGS,ASX,4,25.00\n"
	_, err = env.importService.ProcessUpload(strings.NewReader(otherCSV), 1, "generic", "")
	require.NoError(t, err)

	deleted, err := env.importService.DeleteBatch(1, first.BatchID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	holdings, err := env.portfolioService.GetHoldings(1)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "VGS", holdings[0].Symbol)
}

func TestDeleteAllTransactions(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.importService.ProcessUpload(strings.NewReader(genericCSV), 1, "generic", "")
	require.NoError(t, err)

	deleted, err := env.importService.DeleteAllTransactions(1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	holdings, err := env.portfolioService.GetHoldings(1)
	require.NoError(t, err)
	assert.Empty(t, holdings)
	total, err := env.portfolioService.GetTotalValue(1)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetAllocationDimensions(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.importService.ProcessUpload(strings.NewReader(genericCSV), 1, "generic", "")
	require.NoError(t, err)

	byMarket, err := env.portfolioService.GetAllocation(1, "market")
	require.NoError(t, err)
	require.Len(t, byMarket, 1)
	assert.Equal(t, "ASX", byMarket[0].Label)

	byType, err := env.portfolioService.GetAllocation(1, "type")
	require.NoError(t, err)
	assert.Len(t, byType, 3)

	_, err = env.portfolioService.GetAllocation(1, "sector")
	assert.Error(t, err)
}

func TestGetTimeSeriesWithMarketFilter(t *testing.T) {
	env := newTestEnv(t)

	csvData := "Date,Type,Symbol,Exchange,Quantity,Price\n" +
		"2024-01-02,buy,VAS,ASX,10,5.00\n" +
		"2024-01-03,buy,AAPL,NASDAQ,2,100.00\n"
	_, err := env.importService.ProcessUpload(strings.NewReader(csvData), 1, "generic", "")
	require.NoError(t, err)

	series, err := env.portfolioService.GetTimeSeries(1, nil)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.InDelta(t, 250.0, series[1].TotalValue, 1e-9)

	asxOnly, err := env.portfolioService.GetTimeSeries(1, []string{"ASX"})
	require.NoError(t, err)
	require.Len(t, asxOnly, 2)
	assert.InDelta(t, 50.0, asxOnly[1].TotalValue, 1e-9)
}

func TestUsersAreIsolated(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.importService.ProcessUpload(strings.NewReader(genericCSV), 1, "generic", "")
	require.NoError(t, err)

	holdings, err := env.portfolioService.GetHoldings(2)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestSnapshotServiceRejectsBadSchedule(t *testing.T) {
	env := newTestEnv(t)

	err := env.snapshotService.Start("not a cron expression")
	assert.Error(t, err)

	require.NoError(t, env.snapshotService.Start("0 18 * * *"))
	env.snapshotService.Stop()
}

func TestDeleteMissingTransactionReportsNotFound(t *testing.T) {
	env := newTestEnv(t)

	err := env.importService.DeleteTransaction(1, 12345)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.False(t, errors.Is(err, ErrUpstreamFailed))
}

func TestProcessUploadKeepsIdenticalSameDayFills(t *testing.T) {
	env := newTestEnv(t)

	// One order filled as two identical same-price executions: both rows of
	// the export must land, doubling the position rather than halving it.
	csvData := "Date,Type,Symbol,Exchange,Quantity,Price\n" +
		"2024-01-02,buy,VAS,ASX,50,10.00\n" +
		"2024-01-02,buy,VAS,ASX,50,10.00\n"
	result, err := env.importService.ProcessUpload(strings.NewReader(csvData), 1, "generic", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.DuplicatesSkipped)
	require.Len(t, result.Holdings, 1)
	assert.InDelta(t, 100.0, result.Holdings[0].Quantity, 1e-9)

	// Re-importing the same file is still idempotent.
	result, err = env.importService.ProcessUpload(strings.NewReader(csvData), 1, "generic", "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 2, result.DuplicatesSkipped)
	assert.InDelta(t, 100.0, result.Holdings[0].Quantity, 1e-9)
}
