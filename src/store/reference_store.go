package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
)

// ReferenceStore resolves securities and brokers by upsert-style lookup. The
// import pipeline calls these before transactions reference them.
type ReferenceStore struct {
	db *sql.DB
}

func NewReferenceStore(db *sql.DB) *ReferenceStore {
	return &ReferenceStore{db: db}
}

// ResolveOrCreateSecurity returns the id of the (symbol, exchange) security,
// creating the row on first sight. A later import may fill in a name the
// first one lacked.
func (s *ReferenceStore) ResolveOrCreateSecurity(symbol, exchange, currency, name string) (int64, error) {
	var id int64
	var existingName string
	err := s.db.QueryRow(
		"SELECT id, COALESCE(name, '') FROM securities WHERE symbol = ? AND exchange = ?",
		symbol, exchange,
	).Scan(&id, &existingName)
	if err == nil {
		if existingName == "" && name != "" {
			if _, err := s.db.Exec("UPDATE securities SET name = ? WHERE id = ?", name, id); err != nil {
				return 0, fmt.Errorf("error backfilling security name: %w", err)
			}
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("error looking up security %s:%s: %w", symbol, exchange, err)
	}

	res, err := s.db.Exec(
		"INSERT INTO securities (symbol, exchange, currency, name) VALUES (?, ?, ?, ?)",
		symbol, exchange, currency, name,
	)
	if err != nil {
		// Lost a race with a concurrent import of the same security.
		if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
			return s.ResolveOrCreateSecurity(symbol, exchange, currency, name)
		}
		return 0, fmt.Errorf("error creating security %s:%s: %w", symbol, exchange, err)
	}
	return res.LastInsertId()
}

// ResolveOrCreateBroker returns the id of the named broker, creating it on
// first sight.
func (s *ReferenceStore) ResolveOrCreateBroker(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM brokers WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("error looking up broker %q: %w", name, err)
	}

	res, err := s.db.Exec("INSERT INTO brokers (name) VALUES (?)", name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
			return s.ResolveOrCreateBroker(name)
		}
		return 0, fmt.Errorf("error creating broker %q: %w", name, err)
	}
	return res.LastInsertId()
}

// ListSecurities returns all known securities, ordered by symbol.
func (s *ReferenceStore) ListSecurities() ([]models.Security, error) {
	rows, err := s.db.Query("SELECT id, symbol, exchange, currency, COALESCE(name, '') FROM securities ORDER BY symbol, exchange")
	if err != nil {
		return nil, fmt.Errorf("error querying securities: %w", err)
	}
	defer rows.Close()

	var securities []models.Security
	for rows.Next() {
		var sec models.Security
		if err := rows.Scan(&sec.ID, &sec.Symbol, &sec.Exchange, &sec.Currency, &sec.Name); err != nil {
			return nil, err
		}
		securities = append(securities, sec)
	}
	return securities, rows.Err()
}

// ListBrokers returns all known brokers, ordered by name.
func (s *ReferenceStore) ListBrokers() ([]models.Broker, error) {
	rows, err := s.db.Query("SELECT id, name FROM brokers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("error querying brokers: %w", err)
	}
	defer rows.Close()

	var brokers []models.Broker
	for rows.Next() {
		var b models.Broker
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		brokers = append(brokers, b)
	}
	return brokers, rows.Err()
}
