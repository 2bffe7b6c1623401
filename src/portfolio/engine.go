// Package portfolio orchestrates per-security ledgers into portfolio-level
// output: a current holdings summary and a date-indexed value time series.
// Everything is recomputed from the full transaction history on every run;
// there is no incremental state to invalidate or corrupt.
package portfolio

import (
	"sort"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/ledger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

// Valuation is the result of one replay of a user's history.
type Valuation struct {
	Positions map[models.SecurityKey]*models.SecurityPosition
	Series    []models.PortfolioSnapshotPoint
	Anomalies []ledger.Anomaly

	dividends map[models.SecurityKey]*models.DividendIncome
}

// Run replays the full transaction history in one pass, maintaining one
// position per security key. Input order is not trusted: transactions are
// stable-sorted by date first, so same-date rows keep their insertion order.
// After each transaction the instantaneous portfolio value is recorded
// against that transaction's date; multiple same-day transactions collapse
// into a single end-of-day point.
func Run(txs []models.CanonicalTransaction) *Valuation {
	sorted := make([]models.CanonicalTransaction, len(txs))
	copy(sorted, txs)
	ledger.SortTransactions(sorted)

	v := &Valuation{
		Positions: make(map[models.SecurityKey]*models.SecurityPosition),
		dividends: make(map[models.SecurityKey]*models.DividendIncome),
	}

	for i := range sorted {
		tx := &sorted[i]
		key := tx.Key()
		pos, ok := v.Positions[key]
		if !ok {
			p := ledger.NewPosition(tx)
			pos = &p
			v.Positions[key] = pos
		}
		if anomaly := ledger.Apply(pos, tx); anomaly != nil {
			v.Anomalies = append(v.Anomalies, *anomaly)
		}
		if tx.Type == models.TypeDividend {
			v.recordDividend(key, pos, tx)
		}

		total, perMarket := v.snapshotValues()
		point := models.PortfolioSnapshotPoint{
			Date:           tx.Date,
			TotalValue:     total,
			PerMarketValue: perMarket,
		}
		if n := len(v.Series); n > 0 && v.Series[n-1].Date == tx.Date {
			v.Series[n-1] = point
		} else {
			v.Series = append(v.Series, point)
		}
	}
	return v
}

// snapshotValues computes the instantaneous portfolio value across all
// tracked securities, valued at each security's last observed trade price.
func (v *Valuation) snapshotValues() (float64, map[string]float64) {
	var total float64
	perMarket := make(map[string]float64)
	for key, pos := range v.Positions {
		value := pos.MarketValue()
		total += value
		perMarket[key.Exchange] += value
	}
	return total, perMarket
}

func (v *Valuation) recordDividend(key models.SecurityKey, pos *models.SecurityPosition, tx *models.CanonicalTransaction) {
	income, ok := v.dividends[key]
	if !ok {
		income = &models.DividendIncome{
			Symbol:   key.Symbol,
			Exchange: key.Exchange,
			Name:     pos.Name,
			Currency: tx.Currency,
		}
		v.dividends[key] = income
	}
	income.Amount += tx.DividendAmount()
	income.FrankingCredits += ledger.ExtractFrankingCredit(tx.Notes)
	income.Payments++
	if income.Name == "" {
		income.Name = pos.Name
	}
}

// Holdings returns the current-holdings summary: every security whose
// quantity sits above the zero epsilon, ordered by symbol then exchange.
func (v *Valuation) Holdings() []models.Holding {
	var holdings []models.Holding
	for _, pos := range v.Positions {
		if pos.Quantity <= ledger.ZeroEpsilon {
			continue
		}
		// Money columns are rounded to cents for display; the ledger keeps
		// its full precision internally.
		holdings = append(holdings, models.Holding{
			Symbol:             pos.Symbol,
			Exchange:           pos.Exchange,
			Name:               pos.Name,
			LastPrice:          pos.LastPrice,
			Quantity:           pos.Quantity,
			CurrentValue:       utils.RoundFloat(pos.MarketValue(), 2),
			CostBasis:          utils.RoundFloat(pos.TotalCost, 2),
			UnrealizedGainLoss: utils.RoundFloat(pos.UnrealizedGainLoss(), 2),
			RealizedGainLoss:   utils.RoundFloat(pos.RealizedGainLoss, 2),
			DividendsReceived:  utils.RoundFloat(pos.DividendsReceived, 2),
			TotalReturn:        utils.RoundFloat(pos.TotalReturn(), 2),
			Currency:           pos.Currency,
		})
	}
	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].Symbol != holdings[j].Symbol {
			return holdings[i].Symbol < holdings[j].Symbol
		}
		return holdings[i].Exchange < holdings[j].Exchange
	})
	return holdings
}

// TimeSeries returns the ordered snapshot series, optionally restricted to a
// subset of markets. The filter is a presentation-time slice over the
// per-market breakdown already recorded at each point, not a second ledger
// run.
func (v *Valuation) TimeSeries(markets []string) []models.PortfolioSnapshotPoint {
	if len(markets) == 0 {
		return v.Series
	}
	wanted := make(map[string]bool, len(markets))
	for _, m := range markets {
		wanted[m] = true
	}
	filtered := make([]models.PortfolioSnapshotPoint, 0, len(v.Series))
	for _, point := range v.Series {
		var total float64
		perMarket := make(map[string]float64)
		for market, value := range point.PerMarketValue {
			if wanted[market] {
				perMarket[market] = value
				total += value
			}
		}
		filtered = append(filtered, models.PortfolioSnapshotPoint{
			Date:           point.Date,
			TotalValue:     total,
			PerMarketValue: perMarket,
		})
	}
	return filtered
}

// TotalValue is the portfolio's current value across all securities.
func (v *Valuation) TotalValue() float64 {
	var total float64
	for _, pos := range v.Positions {
		total += pos.MarketValue()
	}
	return total
}

// TotalReturn sums realized, unrealized and dividend returns across all
// securities. By construction it equals the sum of per-security total
// returns.
func (v *Valuation) TotalReturn() float64 {
	var total float64
	for _, pos := range v.Positions {
		total += pos.TotalReturn()
	}
	return total
}

// DividendIncome reports dividend receipts per security, with franking
// credits, ordered by symbol.
func (v *Valuation) DividendIncome() []models.DividendIncome {
	incomes := make([]models.DividendIncome, 0, len(v.dividends))
	for _, income := range v.dividends {
		incomes = append(incomes, *income)
	}
	sort.Slice(incomes, func(i, j int) bool {
		if incomes[i].Symbol != incomes[j].Symbol {
			return incomes[i].Symbol < incomes[j].Symbol
		}
		return incomes[i].Exchange < incomes[j].Exchange
	})
	return incomes
}
