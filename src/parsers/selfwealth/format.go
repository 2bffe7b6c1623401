// Package selfwealth handles SelfWealth trade-history exports.
package selfwealth

import (
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

type Format struct{}

func NewFormat() *Format { return &Format{} }

func (f *Format) Name() string { return "selfwealth" }

func (f *Format) RequiredColumns() []string {
	return []string{"Trade Date", "Action", "Symbol", "Units", "Average Price"}
}

func (f *Format) Normalize(row map[string]string) (models.CanonicalTransaction, error) {
	units, err := utils.ParseDecimal(row["Units"])
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	price, err := utils.ParseDecimalRequired(row["Average Price"], "Average Price")
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	brokerage, err := utils.ParseDecimal(row["Brokerage"])
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	totalAmount, err := utils.ParseDecimal(row["Total Amount"])
	if err != nil {
		return models.CanonicalTransaction{}, err
	}

	// SelfWealth only reports the market column for international trades.
	exchange := row["Market"]
	if exchange == "" {
		exchange = "ASX"
	}
	currency := row["Currency"]
	if currency == "" {
		currency = "AUD"
	}

	txType := models.ClassifyType(row["Action"])
	if txType == models.TypeDividend {
		// Dividend rows carry the payout in the price column and no units.
		units = nil
	}

	return models.CanonicalTransaction{
		Symbol:       row["Symbol"],
		Exchange:     exchange,
		Name:         row["Company Name"],
		Type:         txType,
		Date:         utils.NormalizeDate(row["Trade Date"]),
		Quantity:     units,
		Price:        price,
		Fees:         brokerage,
		Currency:     currency,
		TotalAmount:  totalAmount,
		ExchangeRate: 1.0,
		Notes:        row["Comments"],
	}, nil
}
