package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/store"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

// snapshotServiceImpl records portfolio total-value snapshots: once after
// every successful import or mutation, and once a day on a cron schedule so
// the performance chart keeps moving between imports.
type snapshotServiceImpl struct {
	txStore          *store.TransactionStore
	snapshotStore    *store.SnapshotStore
	portfolioService PortfolioService
	scheduler        *cron.Cron
}

func NewSnapshotService(
	txStore *store.TransactionStore,
	snapshotStore *store.SnapshotStore,
	portfolioService PortfolioService,
) *snapshotServiceImpl {
	return &snapshotServiceImpl{
		txStore:          txStore,
		snapshotStore:    snapshotStore,
		portfolioService: portfolioService,
	}
}

// Start schedules the daily snapshot job. The schedule is a standard cron
// expression, e.g. "0 18 * * *" for 18:00 every day.
func (s *snapshotServiceImpl) Start(schedule string) error {
	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc(schedule, s.RecordAll); err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", schedule, err)
	}
	s.scheduler.Start()
	logger.L.Info("Snapshot scheduler started", "schedule", schedule)
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *snapshotServiceImpl) Stop() {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
}

// RecordAll snapshots every user with transaction history. One failing user
// does not stop the others.
func (s *snapshotServiceImpl) RecordAll() {
	userIDs, err := s.txStore.UserIDs()
	if err != nil {
		logger.L.Error("Snapshot job failed to list users", "error", err)
		return
	}
	for _, userID := range userIDs {
		if err := s.RecordSnapshot(userID); err != nil {
			logger.L.Error("Snapshot job failed for user", "userID", userID, "error", err)
		}
	}
	logger.L.Info("Snapshot job completed", "users", len(userIDs))
}

// RecordSnapshot persists today's total portfolio value for one user.
func (s *snapshotServiceImpl) RecordSnapshot(userID int64) error {
	totalValue, err := s.portfolioService.GetTotalValue(userID)
	if err != nil {
		return err
	}
	date := time.Now().Format(utils.ISODateFormat)
	if err := s.snapshotStore.Record(userID, date, totalValue, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	logger.L.Debug("Recorded portfolio snapshot", "userID", userID, "date", date, "totalValue", totalValue)
	return nil
}

// ListSnapshots returns the persisted whole-portfolio snapshot history.
func (s *snapshotServiceImpl) ListSnapshots(userID int64) ([]models.PortfolioSnapshot, error) {
	snapshots, err := s.snapshotStore.List(userID, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}
	return snapshots, nil
}
