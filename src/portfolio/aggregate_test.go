package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
)

func TestAllocationByDimension(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "VAS", Exchange: "ASX", Currency: "AUD", CurrentValue: 100},
		{Symbol: "VGS", Exchange: "ASX", Currency: "AUD", CurrentValue: 50},
		{Symbol: "AAPL", Exchange: "NASDAQ", Currency: "USD", CurrentValue: 200},
	}

	byMarket := AllocationByDimension(holdings, DimensionMarket)
	require.Len(t, byMarket, 2)
	assert.Equal(t, "ASX", byMarket[0].Label)
	assert.InDelta(t, 150.0, byMarket[0].Value, 1e-9)
	assert.Equal(t, 2, byMarket[0].Count)
	assert.Equal(t, "NASDAQ", byMarket[1].Label)
	assert.InDelta(t, 200.0, byMarket[1].Value, 1e-9)

	byCurrency := AllocationByDimension(holdings, DimensionCurrency)
	require.Len(t, byCurrency, 2)
	assert.Equal(t, "AUD", byCurrency[0].Label)

	bySecurity := AllocationByDimension(holdings, DimensionSecurity)
	require.Len(t, bySecurity, 3)
	assert.Equal(t, "AAPL", bySecurity[0].Label)

	assert.Nil(t, AllocationByDimension(holdings, "sector"))
}

func TestTransactionsByType(t *testing.T) {
	txs := []models.CanonicalTransaction{
		{Type: models.TypeBuy, Quantity: models.Float64Ptr(10), Price: 5, Fees: models.Float64Ptr(2)},
		{Type: models.TypeBuy, TotalAmount: models.Float64Ptr(100)},
		{Type: models.TypeSell, Quantity: models.Float64Ptr(4), Price: 6, Fees: models.Float64Ptr(1)},
		{Type: models.TypeDividend, TotalAmount: models.Float64Ptr(30)},
	}

	slices := TransactionsByType(txs)
	require.Len(t, slices, 3)

	byLabel := make(map[string]models.AllocationSlice)
	for _, s := range slices {
		byLabel[s.Label] = s
	}
	assert.InDelta(t, -152.0, byLabel[models.TypeBuy].Value, 1e-9)
	assert.Equal(t, 2, byLabel[models.TypeBuy].Count)
	assert.InDelta(t, 23.0, byLabel[models.TypeSell].Value, 1e-9)
	assert.InDelta(t, 30.0, byLabel[models.TypeDividend].Value, 1e-9)
}

func TestCashEffect(t *testing.T) {
	buy := models.CanonicalTransaction{Type: models.TypeBuy, TotalAmount: models.Float64Ptr(105)}
	assert.InDelta(t, -105.0, CashEffect(&buy), 1e-9)

	sell := models.CanonicalTransaction{Type: models.TypeSell, Quantity: models.Float64Ptr(4), Price: 6, Fees: models.Float64Ptr(1)}
	assert.InDelta(t, 23.0, CashEffect(&sell), 1e-9)

	other := models.CanonicalTransaction{Type: "Split"}
	assert.InDelta(t, 0.0, CashEffect(&other), 1e-9)
}
