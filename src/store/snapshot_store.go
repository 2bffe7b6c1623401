package store

import (
	"database/sql"
	"fmt"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
)

// SnapshotStore persists periodic total-value snapshots for long-run
// performance charting. One row per (user, date, broker); recording the same
// day twice overwrites the earlier value, since later in the day means more
// complete data.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Record upserts a snapshot. brokerID 0 means the whole portfolio.
func (s *SnapshotStore) Record(userID int64, date string, totalValue float64, brokerID int64) error {
	_, err := s.db.Exec(`
		INSERT INTO portfolio_snapshots (user_id, date, total_value, broker_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, date, broker_id) DO UPDATE SET total_value = excluded.total_value`,
		userID, date, totalValue, brokerID)
	if err != nil {
		return fmt.Errorf("error recording snapshot for user %d on %s: %w", userID, date, err)
	}
	return nil
}

// List returns a user's snapshots ordered by date, optionally scoped to one
// broker.
func (s *SnapshotStore) List(userID int64, brokerID int64) ([]models.PortfolioSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, date, total_value, broker_id
		FROM portfolio_snapshots
		WHERE user_id = ? AND broker_id = ?
		ORDER BY date ASC`, userID, brokerID)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshots for user %d: %w", userID, err)
	}
	defer rows.Close()

	var snapshots []models.PortfolioSnapshot
	for rows.Next() {
		var snap models.PortfolioSnapshot
		if err := rows.Scan(&snap.ID, &snap.UserID, &snap.Date, &snap.TotalValue, &snap.BrokerID); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}
