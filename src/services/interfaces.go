package services

import (
	"errors"
	"io"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/ledger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/store"
)

// Common service errors. Storage failures are wrapped in ErrUpstreamFailed
// and propagated unchanged to the caller; they are never swallowed, and a
// failed import makes no partial writes.
var (
	ErrParsingFailed  = errors.New("csv parsing failed")
	ErrUpstreamFailed = errors.New("storage operation failed")
)

// ImportResult summarises one upload or manual mutation.
type ImportResult struct {
	BatchID           string           `json:"batch_id,omitempty"`
	Parsed            int              `json:"parsed"`
	Inserted          int              `json:"inserted"`
	DuplicatesSkipped int              `json:"duplicates_skipped"`
	TotalValue        float64          `json:"total_value"`
	Holdings          []models.Holding `json:"holdings"`
	Anomalies         []ledger.Anomaly `json:"anomalies,omitempty"`
}

// ImportService is the write side: CSV uploads, manual entries, deletions.
type ImportService interface {
	ProcessUpload(fileReader io.Reader, userID int64, source string, brokerName string) (*ImportResult, error)
	CreateTransaction(userID int64, tx models.CanonicalTransaction, brokerName string) (*ImportResult, error)
	DeleteTransaction(userID, transactionID int64) error
	DeleteBatch(userID int64, batchID string) (int64, error)
	DeleteAllTransactions(userID int64) (int64, error)
}

// PortfolioService is the read side: valuations derived by replaying the
// stored history, cached per user until the next write.
type PortfolioService interface {
	GetHoldings(userID int64) ([]models.Holding, error)
	GetTimeSeries(userID int64, markets []string) ([]models.PortfolioSnapshotPoint, error)
	GetDividendIncome(userID int64) ([]models.DividendIncome, error)
	GetAllocation(userID int64, dimension string) ([]models.AllocationSlice, error)
	GetTransactions(userID int64, filter store.TransactionFilter) ([]models.CanonicalTransaction, error)
	GetTotalValue(userID int64) (float64, error)
	InvalidateUserCache(userID int64)
}

// SnapshotRecorder persists total-value snapshots after imports and on the
// daily schedule.
type SnapshotRecorder interface {
	RecordSnapshot(userID int64) error
	ListSnapshots(userID int64) ([]models.PortfolioSnapshot, error)
}
