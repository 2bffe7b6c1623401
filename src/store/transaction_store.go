// Package store implements the persistence collaborators around the
// valuation core: the append-only transaction store, security/broker
// reference data, and the snapshot recorder. The core itself never touches
// SQL; it receives already-fetched history and returns plain values.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
)

// ErrNotFound reports a delete or lookup that matched no row for the user.
var ErrNotFound = errors.New("transaction not found")

// TransactionStore persists canonical transactions per user. Records are
// immutable once inserted; corrections are delete plus re-create.
type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// TransactionFilter narrows a fetch. Zero values mean no restriction.
type TransactionFilter struct {
	BrokerID int64
	Symbol   string
	Exchange string
}

// Fetch returns a user's transactions ordered ascending by date with row id
// as the stable same-date tie-break, which is exactly the replay order the
// ledger documents.
func (s *TransactionStore) Fetch(userID int64, filter TransactionFilter) ([]models.CanonicalTransaction, error) {
	query := `
		SELECT id, user_id, symbol, exchange, COALESCE(name, ''), COALESCE(broker_id, 0),
		       type, date, quantity, price, fees, currency, total_amount,
		       exchange_rate, COALESCE(notes, ''), COALESCE(batch_id, ''), hash_id
		FROM transactions
		WHERE user_id = ?`
	args := []interface{}{userID}
	if filter.BrokerID != 0 {
		query += " AND broker_id = ?"
		args = append(args, filter.BrokerID)
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Exchange != "" {
		query += " AND exchange = ?"
		args = append(args, filter.Exchange)
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var txs []models.CanonicalTransaction
	for rows.Next() {
		var tx models.CanonicalTransaction
		var quantity, fees, totalAmount sql.NullFloat64
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Symbol, &tx.Exchange, &tx.Name, &tx.BrokerID,
			&tx.Type, &tx.Date, &quantity, &tx.Price, &fees, &tx.Currency,
			&totalAmount, &tx.ExchangeRate, &tx.Notes, &tx.BatchID, &tx.HashID,
		); err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		if quantity.Valid {
			tx.Quantity = models.Float64Ptr(quantity.Float64)
		}
		if fees.Valid {
			tx.Fees = models.Float64Ptr(fees.Float64)
		}
		if totalAmount.Valid {
			tx.TotalAmount = models.Float64Ptr(totalAmount.Float64)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// InsertBatch writes a whole import in one database transaction: either every
// row lands or none do, so a failed import never leaves partial cost-basis
// history behind. Rows whose content hash already exists for the user are
// skipped, which makes re-importing the same file idempotent. Returns the
// number of rows actually inserted.
func (s *TransactionStore) InsertBatch(userID int64, txs []models.CanonicalTransaction) (int, error) {
	for i := range txs {
		if txs[i].HashID == "" {
			models.AssignHashIDs(txs)
			break
		}
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`
		INSERT INTO transactions (user_id, symbol, exchange, name, broker_id, type, date,
			quantity, price, fees, currency, total_amount, exchange_rate, notes, batch_id, hash_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range txs {
		tx := &txs[i]
		_, err := stmt.Exec(userID, tx.Symbol, tx.Exchange, tx.Name, nullableID(tx.BrokerID),
			tx.Type, tx.Date, nullableFloat(tx.Quantity), tx.Price, nullableFloat(tx.Fees),
			tx.Currency, nullableFloat(tx.TotalAmount), tx.ExchangeRate, tx.Notes, tx.BatchID, tx.HashID)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				logger.L.Debug("Skipping duplicate transaction on insert", "userID", userID, "hash_id", tx.HashID)
				continue
			}
			return 0, fmt.Errorf("error inserting transaction (%s %s on %s): %w", tx.Type, tx.Symbol, tx.Date, err)
		}
		inserted++
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing transactions: %w", err)
	}
	return inserted, nil
}

// Delete removes one transaction. The user scope prevents deleting another
// user's rows by id.
func (s *TransactionStore) Delete(id, userID int64) error {
	res, err := s.db.Exec("DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("error deleting transaction %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d for user %d", ErrNotFound, id, userID)
	}
	return nil
}

// DeleteBatch removes every transaction imported in one batch, for undoing a
// bad upload in a single action.
func (s *TransactionStore) DeleteBatch(userID int64, batchID string) (int64, error) {
	res, err := s.db.Exec("DELETE FROM transactions WHERE user_id = ? AND batch_id = ?", userID, batchID)
	if err != nil {
		return 0, fmt.Errorf("error deleting batch %s: %w", batchID, err)
	}
	return res.RowsAffected()
}

// DeleteAll wipes a user's entire transaction history.
func (s *TransactionStore) DeleteAll(userID int64) (int64, error) {
	res, err := s.db.Exec("DELETE FROM transactions WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("error deleting transactions for user %d: %w", userID, err)
	}
	return res.RowsAffected()
}

// UserIDs lists every user with at least one transaction, for the scheduled
// snapshot job.
func (s *TransactionStore) UserIDs() ([]int64, error) {
	rows, err := s.db.Query("SELECT DISTINCT user_id FROM transactions ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("error querying user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
