package services

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/parsers"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/security/validation"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/store"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

type importServiceImpl struct {
	txStore          *store.TransactionStore
	refStore         *store.ReferenceStore
	portfolioService PortfolioService
	snapshotRecorder SnapshotRecorder
}

// NewImportService builds the write-side pipeline: parse, validate, resolve
// reference data, insert atomically, then invalidate caches and record a
// fresh snapshot.
func NewImportService(
	txStore *store.TransactionStore,
	refStore *store.ReferenceStore,
	portfolioService PortfolioService,
	snapshotRecorder SnapshotRecorder,
) ImportService {
	return &importServiceImpl{
		txStore:          txStore,
		refStore:         refStore,
		portfolioService: portfolioService,
		snapshotRecorder: snapshotRecorder,
	}
}

func (s *importServiceImpl) ProcessUpload(fileReader io.Reader, userID int64, source string, brokerName string) (*ImportResult, error) {
	startTime := time.Now()
	logger.L.Info("ProcessUpload START", "userID", userID, "source", source, "broker", brokerName)

	format, err := parsers.GetFormat(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	header, rows, err := parsers.ReadRows(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	// FormatMismatch and per-row errors pass through unwrapped so handlers
	// can surface the missing columns / row numbers to the user.
	txs, err := parsers.Parse(header, rows, format)
	if err != nil {
		return nil, err
	}

	// Validation happens for the whole file before any persistence: a failed
	// row aborts the import with zero rows written.
	for i := range txs {
		if err := validation.ValidateTransaction(&txs[i]); err != nil {
			return nil, &parsers.RowError{Row: i + 1, Err: err}
		}
	}

	batchID := uuid.NewString()
	if err := s.prepareBatch(txs, batchID, brokerName); err != nil {
		return nil, err
	}

	inserted, err := s.txStore.InsertBatch(userID, txs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	result, err := s.afterMutation(userID, batchID, len(txs), inserted)
	if err != nil {
		return nil, err
	}

	logger.L.Info("ProcessUpload END", "userID", userID, "parsed", len(txs),
		"inserted", inserted, "duration", time.Since(startTime))
	return result, nil
}

func (s *importServiceImpl) CreateTransaction(userID int64, tx models.CanonicalTransaction, brokerName string) (*ImportResult, error) {
	tx.Date = utils.NormalizeDate(tx.Date)
	if tx.Type != "" {
		tx.Type = models.ClassifyType(tx.Type)
	}
	if tx.ExchangeRate == 0 {
		tx.ExchangeRate = 1.0
	}
	if err := validation.ValidateTransaction(&tx); err != nil {
		return nil, err
	}

	batch := []models.CanonicalTransaction{tx}
	if err := s.prepareBatch(batch, "", brokerName); err != nil {
		return nil, err
	}

	inserted, err := s.txStore.InsertBatch(userID, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	return s.afterMutation(userID, "", 1, inserted)
}

func (s *importServiceImpl) DeleteTransaction(userID, transactionID int64) error {
	if err := s.txStore.Delete(transactionID, userID); err != nil {
		// Not-found passes through unwrapped so the handler can answer 404.
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	_, err := s.afterMutation(userID, "", 0, 0)
	return err
}

func (s *importServiceImpl) DeleteBatch(userID int64, batchID string) (int64, error) {
	deleted, err := s.txStore.DeleteBatch(userID, batchID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	if _, err := s.afterMutation(userID, "", 0, 0); err != nil {
		return deleted, err
	}
	return deleted, nil
}

func (s *importServiceImpl) DeleteAllTransactions(userID int64) (int64, error) {
	deleted, err := s.txStore.DeleteAll(userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	s.portfolioService.InvalidateUserCache(userID)
	return deleted, nil
}

// prepareBatch resolves reference data and stamps batch and hash ids before
// insertion. Reference failures abort the import with nothing written.
func (s *importServiceImpl) prepareBatch(txs []models.CanonicalTransaction, batchID, brokerName string) error {
	var brokerID int64
	if brokerName != "" {
		id, err := s.refStore.ResolveOrCreateBroker(brokerName)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
		}
		brokerID = id
	}

	seen := make(map[models.SecurityKey]bool)
	for i := range txs {
		tx := &txs[i]
		key := tx.Key()
		if !seen[key] {
			if _, err := s.refStore.ResolveOrCreateSecurity(tx.Symbol, tx.Exchange, tx.Currency, tx.Name); err != nil {
				return fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
			}
			seen[key] = true
		}
		tx.BatchID = batchID
		tx.BrokerID = brokerID
	}
	models.AssignHashIDs(txs)
	return nil
}

// afterMutation invalidates the user's cached valuation and records a fresh
// total-value snapshot, then returns the post-mutation summary.
func (s *importServiceImpl) afterMutation(userID int64, batchID string, parsed, inserted int) (*ImportResult, error) {
	s.portfolioService.InvalidateUserCache(userID)

	if err := s.snapshotRecorder.RecordSnapshot(userID); err != nil {
		// A snapshot failure must not undo a committed import; flag it and
		// let the scheduled job catch up.
		logger.L.Error("Failed to record snapshot after mutation", "userID", userID, "error", err)
	}

	holdings, err := s.portfolioService.GetHoldings(userID)
	if err != nil {
		return nil, err
	}
	totalValue, err := s.portfolioService.GetTotalValue(userID)
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		BatchID:           batchID,
		Parsed:            parsed,
		Inserted:          inserted,
		DuplicatesSkipped: parsed - inserted,
		TotalValue:        totalValue,
		Holdings:          holdings,
	}, nil
}
