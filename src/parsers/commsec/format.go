// Package commsec handles CommSec transaction-summary exports. CommSec only
// trades ASX-listed securities in AUD, so exchange and currency are fixed.
package commsec

import (
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

type Format struct{}

func NewFormat() *Format { return &Format{} }

func (f *Format) Name() string { return "commsec" }

func (f *Format) RequiredColumns() []string {
	return []string{"Date", "Transaction Type", "Code", "Units", "Price ($)"}
}

func (f *Format) Normalize(row map[string]string) (models.CanonicalTransaction, error) {
	units, err := utils.ParseDecimal(row["Units"])
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	price, err := utils.ParseDecimalRequired(row["Price ($)"], "Price ($)")
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	brokerage, err := utils.ParseDecimal(row["Brokerage ($)"])
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	totalAmount, err := utils.ParseDecimal(row["Total ($)"])
	if err != nil {
		return models.CanonicalTransaction{}, err
	}

	txType := models.ClassifyType(row["Transaction Type"])
	if txType == models.TypeDividend {
		units = nil
	}

	return models.CanonicalTransaction{
		Symbol:       row["Code"],
		Exchange:     "ASX",
		Name:         row["Company"],
		Type:         txType,
		Date:         utils.NormalizeDate(row["Date"]),
		Quantity:     units,
		Price:        price,
		Fees:         brokerage,
		Currency:     "AUD",
		TotalAmount:  totalAmount,
		ExchangeRate: 1.0,
		Notes:        row["Notes"],
	}, nil
}
