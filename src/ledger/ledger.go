// Package ledger implements the average-cost accounting engine. A position is
// never persisted: it is recomputed by replaying the full, chronologically
// ordered transaction history, so the output is a pure function of that
// history and survives deletes and re-imports unchanged.
package ledger

import (
	"fmt"
	"sort"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
)

// ZeroEpsilon absorbs floating-point residue: a quantity this close to zero
// is treated as a closed position and clamped, together with its cost basis,
// to exactly 0.
const ZeroEpsilon = 1e-5

// Anomaly flags a historical row the ledger tolerated instead of failing on,
// currently only the degenerate sell-at-zero-quantity case. Valuation must
// stay available even with one bad row in the history.
type Anomaly struct {
	TransactionID int64  `json:"transaction_id,omitempty"`
	Date          string `json:"date"`
	Symbol        string `json:"symbol"`
	Exchange      string `json:"exchange"`
	Reason        string `json:"reason"`
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s %s:%s: %s", a.Date, a.Symbol, a.Exchange, a.Reason)
}

// Step records the position immediately after one transaction was applied.
// The valuation engine uses these intermediate states to build the portfolio
// time series.
type Step struct {
	TransactionID int64
	Date          string
	Position      models.SecurityPosition
}

// Result is a full replay of one security's history.
type Result struct {
	Position  models.SecurityPosition
	Steps     []Step
	Anomalies []Anomaly
}

// SortTransactions orders transactions ascending by date. Same-date rows keep
// their relative input order (the documented tie-break is insertion order,
// nothing else), which is why the sort must be stable.
func SortTransactions(txs []models.CanonicalTransaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date < txs[j].Date
	})
}

// Replay runs one security's full history through the average-cost method.
// Input is sorted defensively; callers do not have to pre-sort.
func Replay(txs []models.CanonicalTransaction) Result {
	sorted := make([]models.CanonicalTransaction, len(txs))
	copy(sorted, txs)
	SortTransactions(sorted)

	var res Result
	for i := range sorted {
		tx := &sorted[i]
		if res.Position.Symbol == "" {
			res.Position = NewPosition(tx)
		}
		if anomaly := Apply(&res.Position, tx); anomaly != nil {
			res.Anomalies = append(res.Anomalies, *anomaly)
		}
		res.Steps = append(res.Steps, Step{
			TransactionID: tx.ID,
			Date:          tx.Date,
			Position:      res.Position,
		})
	}
	return res
}

// NewPosition seeds an empty position from the first transaction seen for a
// security key.
func NewPosition(tx *models.CanonicalTransaction) models.SecurityPosition {
	return models.SecurityPosition{
		Symbol:   tx.Symbol,
		Exchange: tx.Exchange,
		Name:     tx.Name,
		Currency: tx.Currency,
	}
}

// Apply mutates the position with one validated transaction and returns a
// non-nil anomaly for the degenerate cases it absorbs. Malformed input is
// rejected at the boundary before it ever reaches here; Apply itself raises
// no errors.
func Apply(pos *models.SecurityPosition, tx *models.CanonicalTransaction) *Anomaly {
	// Later rows may carry the product name when earlier ones did not.
	if pos.Name == "" && tx.Name != "" {
		pos.Name = tx.Name
	}

	switch tx.Type {
	case models.TypeBuy:
		qty := tx.QuantityValue()
		pos.Quantity += qty
		pos.TotalCost += qty*tx.Price + tx.FeesValue()
		pos.LastPrice = tx.Price

	case models.TypeSell:
		if pos.Quantity <= ZeroEpsilon {
			// Selling with nothing tracked: a no-op on cost basis and
			// realized P&L, flagged for review rather than fatal.
			pos.LastPrice = tx.Price
			return &Anomaly{
				TransactionID: tx.ID,
				Date:          tx.Date,
				Symbol:        tx.Symbol,
				Exchange:      tx.Exchange,
				Reason:        "sell transaction with zero tracked quantity",
			}
		}
		soldQty := tx.QuantityValue()
		avgCostPerShare := pos.TotalCost / pos.Quantity
		costOfSoldShares := avgCostPerShare * soldQty
		proceeds := soldQty*tx.Price - tx.FeesValue()
		pos.RealizedGainLoss += proceeds - costOfSoldShares
		pos.Quantity -= soldQty
		pos.TotalCost -= costOfSoldShares
		pos.LastPrice = tx.Price
		if pos.Quantity < ZeroEpsilon {
			pos.Quantity = 0
			pos.TotalCost = 0
		}

	case models.TypeDividend:
		// Quantity and cost basis are untouched, and LastPrice is not
		// updated: a dividend carries no meaningful unit price.
		pos.DividendsReceived += tx.DividendAmount()
		pos.FrankingCredits += ExtractFrankingCredit(tx.Notes)

	default:
		// Unclassified passthrough rows are preserved in history for review
		// but have no accounting effect.
	}
	return nil
}
