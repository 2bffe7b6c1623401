package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
)

func tx(symbol, exchange, txType, date string, qty, price float64) models.CanonicalTransaction {
	t := models.CanonicalTransaction{
		Symbol:   symbol,
		Exchange: exchange,
		Type:     txType,
		Date:     date,
		Price:    price,
		Currency: "AUD",
	}
	if txType != models.TypeDividend {
		t.Quantity = models.Float64Ptr(qty)
	}
	return t
}

func TestRunSameDayTransactionsCollapseIntoOnePoint(t *testing.T) {
	v := Run([]models.CanonicalTransaction{
		tx("VAS", "ASX", models.TypeBuy, "2024-01-02", 10, 5),
		tx("VAS", "ASX", models.TypeBuy, "2024-01-02", 20, 6),
	})

	require.Len(t, v.Series, 1)
	point := v.Series[0]
	assert.Equal(t, "2024-01-02", point.Date)
	// 30 units valued at the last observed price of $6.
	assert.InDelta(t, 180.0, point.TotalValue, 1e-9)

	pos := v.Positions[models.SecurityKey{Symbol: "VAS", Exchange: "ASX"}]
	require.NotNil(t, pos)
	assert.InDelta(t, 30.0, pos.Quantity, 1e-9)
	assert.InDelta(t, 170.0, pos.TotalCost, 1e-9)
}

func TestRunFinalSameDatePointIndependentOfOrder(t *testing.T) {
	a := tx("VAS", "ASX", models.TypeBuy, "2024-01-02", 10, 5)
	b := tx("VGS", "ASX", models.TypeBuy, "2024-01-02", 4, 25)

	first := Run([]models.CanonicalTransaction{a, b})
	second := Run([]models.CanonicalTransaction{b, a})

	require.Len(t, first.Series, 1)
	require.Len(t, second.Series, 1)
	assert.InDelta(t, first.Series[0].TotalValue, second.Series[0].TotalValue, 1e-9)
	assert.Equal(t, first.Series[0].PerMarketValue, second.Series[0].PerMarketValue)
}

func TestRunBuildsPerMarketBreakdown(t *testing.T) {
	v := Run([]models.CanonicalTransaction{
		tx("VAS", "ASX", models.TypeBuy, "2024-01-02", 10, 5),
		tx("AAPL", "NASDAQ", models.TypeBuy, "2024-01-03", 2, 100),
	})

	require.Len(t, v.Series, 2)
	last := v.Series[1]
	assert.InDelta(t, 250.0, last.TotalValue, 1e-9)
	assert.InDelta(t, 50.0, last.PerMarketValue["ASX"], 1e-9)
	assert.InDelta(t, 200.0, last.PerMarketValue["NASDAQ"], 1e-9)
}

func TestTimeSeriesMarketFilterIsSubsetSum(t *testing.T) {
	v := Run([]models.CanonicalTransaction{
		tx("VAS", "ASX", models.TypeBuy, "2024-01-02", 10, 5),
		tx("AAPL", "NASDAQ", models.TypeBuy, "2024-01-03", 2, 100),
	})

	filtered := v.TimeSeries([]string{"ASX"})
	require.Len(t, filtered, 2)
	assert.InDelta(t, 50.0, filtered[1].TotalValue, 1e-9)
	assert.NotContains(t, filtered[1].PerMarketValue, "NASDAQ")

	// No filter returns the full series untouched.
	all := v.TimeSeries(nil)
	assert.InDelta(t, 250.0, all[1].TotalValue, 1e-9)
}

func TestHoldingsExcludeClosedPositions(t *testing.T) {
	v := Run([]models.CanonicalTransaction{
		tx("VAS", "ASX", models.TypeBuy, "2024-01-02", 10, 5),
		tx("VAS", "ASX", models.TypeSell, "2024-02-02", 10, 6),
		tx("VGS", "ASX", models.TypeBuy, "2024-01-02", 4, 25),
	})

	holdings := v.Holdings()
	require.Len(t, holdings, 1)
	assert.Equal(t, "VGS", holdings[0].Symbol)

	// The closed position's realized gain still shows in the total return.
	assert.InDelta(t, 10.0, v.Positions[models.SecurityKey{Symbol: "VAS", Exchange: "ASX"}].RealizedGainLoss, 1e-9)
}

func TestHoldingsSortedBySymbolThenExchange(t *testing.T) {
	v := Run([]models.CanonicalTransaction{
		tx("BHP", "LSE", models.TypeBuy, "2024-01-02", 1, 10),
		tx("BHP", "ASX", models.TypeBuy, "2024-01-02", 1, 10),
		tx("AAPL", "NASDAQ", models.TypeBuy, "2024-01-02", 1, 10),
	})

	holdings := v.Holdings()
	require.Len(t, holdings, 3)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, "ASX", holdings[1].Exchange)
	assert.Equal(t, "LSE", holdings[2].Exchange)
}

func TestHoldingsRoundMoneyColumnsToCents(t *testing.T) {
	// 3 * 10.10 accumulates float residue (30.299999...); the display row
	// carries exact cents while the underlying position keeps full precision.
	v := Run([]models.CanonicalTransaction{
		tx("VAS", "ASX", models.TypeBuy, "2024-01-02", 3, 10.10),
	})

	holdings := v.Holdings()
	require.Len(t, holdings, 1)
	assert.Equal(t, 30.3, holdings[0].CostBasis)
	assert.Equal(t, 30.3, holdings[0].CurrentValue)
	assert.Equal(t, 0.0, holdings[0].UnrealizedGainLoss)
}

func TestSameSymbolOnTwoExchangesAreDistinctPositions(t *testing.T) {
	v := Run([]models.CanonicalTransaction{
		tx("BHP", "ASX", models.TypeBuy, "2024-01-02", 10, 40),
		tx("BHP", "LSE", models.TypeBuy, "2024-01-02", 5, 20),
	})

	require.Len(t, v.Positions, 2)
	assert.InDelta(t, 400.0, v.Positions[models.SecurityKey{Symbol: "BHP", Exchange: "ASX"}].TotalCost, 1e-9)
	assert.InDelta(t, 100.0, v.Positions[models.SecurityKey{Symbol: "BHP", Exchange: "LSE"}].TotalCost, 1e-9)
}

func TestDividendIncomeAggregatesPerSecurity(t *testing.T) {
	div1 := tx("VAS", "ASX", models.TypeDividend, "2024-03-02", 0, 0)
	div1.TotalAmount = models.Float64Ptr(50)
	div1.Notes = "Franking credit $21.43"
	div2 := tx("VAS", "ASX", models.TypeDividend, "2024-06-02", 0, 0)
	div2.TotalAmount = models.Float64Ptr(55)

	v := Run([]models.CanonicalTransaction{
		tx("VAS", "ASX", models.TypeBuy, "2024-01-02", 100, 10),
		div1,
		div2,
	})

	incomes := v.DividendIncome()
	require.Len(t, incomes, 1)
	assert.Equal(t, "VAS", incomes[0].Symbol)
	assert.InDelta(t, 105.0, incomes[0].Amount, 1e-9)
	assert.InDelta(t, 21.43, incomes[0].FrankingCredits, 1e-9)
	assert.Equal(t, 2, incomes[0].Payments)
}

func TestTotalReturnEqualsSumOfPerSecurityReturns(t *testing.T) {
	div := tx("VAS", "ASX", models.TypeDividend, "2024-03-02", 0, 0)
	div.TotalAmount = models.Float64Ptr(50)

	v := Run([]models.CanonicalTransaction{
		tx("VAS", "ASX", models.TypeBuy, "2024-01-02", 100, 10),
		tx("VAS", "ASX", models.TypeSell, "2024-02-02", 40, 15),
		div,
		tx("AAPL", "NASDAQ", models.TypeBuy, "2024-01-02", 2, 100),
	})

	var sum float64
	for _, pos := range v.Positions {
		sum += pos.TotalReturn()
	}
	assert.InDelta(t, sum, v.TotalReturn(), 1e-9)
}

func TestRunSurfacesLedgerAnomalies(t *testing.T) {
	v := Run([]models.CanonicalTransaction{
		tx("GHOST", "ASX", models.TypeSell, "2024-01-02", 10, 5),
	})

	require.Len(t, v.Anomalies, 1)
	assert.Equal(t, "GHOST", v.Anomalies[0].Symbol)
	assert.Empty(t, v.Holdings())
}
