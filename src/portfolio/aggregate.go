package portfolio

import (
	"sort"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
)

// Allocation dimensions for summary charts. These are plain grouping
// reductions and are not order-sensitive.
const (
	DimensionMarket   = "market"
	DimensionCurrency = "currency"
	DimensionSecurity = "security"
	DimensionType     = "type"
)

// AllocationByDimension groups current holdings by the given dimension and
// sums their current value. Unknown dimensions return nil.
func AllocationByDimension(holdings []models.Holding, dimension string) []models.AllocationSlice {
	label := func(h models.Holding) string {
		switch dimension {
		case DimensionMarket:
			return h.Exchange
		case DimensionCurrency:
			return h.Currency
		case DimensionSecurity:
			return h.Symbol
		default:
			return ""
		}
	}
	if dimension != DimensionMarket && dimension != DimensionCurrency && dimension != DimensionSecurity {
		return nil
	}

	buckets := make(map[string]*models.AllocationSlice)
	for _, h := range holdings {
		key := label(h)
		slice, ok := buckets[key]
		if !ok {
			slice = &models.AllocationSlice{Label: key}
			buckets[key] = slice
		}
		slice.Value += h.CurrentValue
		slice.Count++
	}
	return sortSlices(buckets)
}

// TransactionsByType groups a transaction history by canonical type, summing
// each transaction's cash effect. The pre-computed total amount is
// authoritative for display when present; otherwise the effect is derived
// from quantity, price and fees.
func TransactionsByType(txs []models.CanonicalTransaction) []models.AllocationSlice {
	buckets := make(map[string]*models.AllocationSlice)
	for i := range txs {
		tx := &txs[i]
		slice, ok := buckets[tx.Type]
		if !ok {
			slice = &models.AllocationSlice{Label: tx.Type}
			buckets[tx.Type] = slice
		}
		slice.Value += CashEffect(tx)
		slice.Count++
	}
	return sortSlices(buckets)
}

// CashEffect is the display-level cash impact of one transaction: negative
// for buys, positive for sells and dividends.
func CashEffect(tx *models.CanonicalTransaction) float64 {
	if tx.TotalAmount != nil {
		switch tx.Type {
		case models.TypeBuy:
			return -*tx.TotalAmount
		default:
			return *tx.TotalAmount
		}
	}
	switch tx.Type {
	case models.TypeBuy:
		return -(tx.QuantityValue()*tx.Price + tx.FeesValue())
	case models.TypeSell:
		return tx.QuantityValue()*tx.Price - tx.FeesValue()
	case models.TypeDividend:
		return tx.DividendAmount()
	default:
		return 0
	}
}

func sortSlices(buckets map[string]*models.AllocationSlice) []models.AllocationSlice {
	slices := make([]models.AllocationSlice, 0, len(buckets))
	for _, slice := range buckets {
		slices = append(slices, *slice)
	}
	sort.Slice(slices, func(i, j int) bool { return slices[i].Label < slices[j].Label })
	return slices
}
