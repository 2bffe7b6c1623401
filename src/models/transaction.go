package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Transaction types recognised by the ledger. Anything else is carried
// through untouched so unclassified broker rows stay visible for review
// instead of being dropped on import.
const (
	TypeBuy      = "Buy"
	TypeSell     = "Sell"
	TypeDividend = "Dividend"
)

// SecurityKey identifies a tradable instrument. The same symbol listed on
// two exchanges is two distinct securities.
type SecurityKey struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

func (k SecurityKey) String() string {
	return k.Symbol + ":" + k.Exchange
}

// CanonicalTransaction is the broker-agnostic record of one Buy/Sell/Dividend
// event. Parsers populate everything except ID and UserID, which are assigned
// on insert. A transaction is immutable once stored; corrections are made by
// delete and re-create.
type CanonicalTransaction struct {
	ID       int64  `json:"id,omitempty"`
	UserID   int64  `json:"user_id,omitempty"`
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	Name     string `json:"name"` // product/company name as reported by the broker
	BrokerID int64  `json:"broker_id,omitempty"`

	Type string `json:"type"` // Buy, Sell, Dividend, or a capitalized passthrough
	Date string `json:"date"` // YYYY-MM-DD; same-day rows keep insertion order

	// Quantity and Fees are pointers so a missing CSV field stays
	// distinguishable from an explicit zero. Quantity is nil for dividends.
	Quantity *float64 `json:"quantity,omitempty"`
	Price    float64  `json:"price"` // unit price for trades; total amount for legacy dividend rows
	Fees     *float64 `json:"fees,omitempty"`

	Currency string `json:"currency"`

	// TotalAmount, when present, is the authoritative cash effect for display
	// and for dividend income. The ledger still derives cost basis from
	// quantity/price/fees.
	TotalAmount *float64 `json:"total_amount,omitempty"`

	// ExchangeRate is carried from the source file but never applied; values
	// in different currencies are summed as-is.
	ExchangeRate float64 `json:"exchange_rate"`

	Notes string `json:"notes,omitempty"`

	BatchID string `json:"batch_id,omitempty"` // import batch this row arrived in
	HashID  string `json:"hash_id,omitempty"`
}

// Key returns the security key for this transaction.
func (t *CanonicalTransaction) Key() SecurityKey {
	return SecurityKey{Symbol: t.Symbol, Exchange: t.Exchange}
}

// QuantityValue returns the quantity, or 0 when the field is absent.
func (t *CanonicalTransaction) QuantityValue() float64 {
	if t.Quantity == nil {
		return 0
	}
	return *t.Quantity
}

// FeesValue returns the fees, or 0 when the field is absent. "No fee charged"
// and "fee field missing" both cost nothing; the distinction only matters to
// display layers.
func (t *CanonicalTransaction) FeesValue() float64 {
	if t.Fees == nil {
		return 0
	}
	return *t.Fees
}

// DividendAmount returns the cash amount of a dividend row. TotalAmount is
// authoritative when set; legacy rows carry the total in the price field.
func (t *CanonicalTransaction) DividendAmount() float64 {
	if t.TotalAmount != nil {
		return *t.TotalAmount
	}
	return t.Price
}

// contentKey is the duplicate-detection identity of a row, derived from
// source fields only so assigned IDs never affect it.
func (t *CanonicalTransaction) contentKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%f|%f|%f|%s|%s",
		t.Date, t.Symbol, t.Exchange, t.Type,
		t.QuantityValue(), t.Price, t.FeesValue(), t.Currency, t.Notes)
}

// ComputeHash derives the duplicate-detection hash for a single transaction,
// so re-importing the same row is idempotent regardless of assigned IDs.
func (t *CanonicalTransaction) ComputeHash() string {
	return hashString(t.contentKey() + "|0")
}

// AssignHashIDs stamps every transaction's HashID. Identical rows within one
// batch are disambiguated by an occurrence ordinal: a broker splitting one
// order into identical same-day fills produces distinct hashes, while
// re-importing the same file reproduces the same ordinals and stays
// idempotent.
func AssignHashIDs(txs []CanonicalTransaction) {
	occurrences := make(map[string]int)
	for i := range txs {
		tx := &txs[i]
		key := tx.contentKey()
		tx.HashID = hashString(fmt.Sprintf("%s|%d", key, occurrences[key]))
		occurrences[key]++
	}
}

func hashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Float64Ptr is a convenience for building optional numeric fields.
func Float64Ptr(v float64) *float64 { return &v }
