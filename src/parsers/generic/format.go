// Package generic handles CSVs already laid out in the canonical column
// scheme, which is what the manual-export template in the docs produces.
package generic

import (
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

type Format struct{}

func NewFormat() *Format { return &Format{} }

func (f *Format) Name() string { return "generic" }

func (f *Format) RequiredColumns() []string {
	return []string{"Date", "Type", "Symbol", "Exchange", "Quantity", "Price"}
}

func (f *Format) Normalize(row map[string]string) (models.CanonicalTransaction, error) {
	quantity, err := utils.ParseDecimal(row["Quantity"])
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	price, err := utils.ParseDecimalRequired(row["Price"], "Price")
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	fees, err := utils.ParseDecimal(row["Fees"])
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	totalAmount, err := utils.ParseDecimal(row["Total Amount"])
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	rate, err := utils.ParseDecimal(row["Exchange Rate"])
	if err != nil {
		return models.CanonicalTransaction{}, err
	}
	exchangeRate := 1.0
	if rate != nil {
		exchangeRate = *rate
	}

	currency := row["Currency"]
	if currency == "" {
		currency = "AUD"
	}

	return models.CanonicalTransaction{
		Symbol:       row["Symbol"],
		Exchange:     row["Exchange"],
		Name:         row["Name"],
		Type:         models.ClassifyType(row["Type"]),
		Date:         utils.NormalizeDate(row["Date"]),
		Quantity:     quantity,
		Price:        price,
		Fees:         fees,
		Currency:     currency,
		TotalAmount:  totalAmount,
		ExchangeRate: exchangeRate,
		Notes:        row["Notes"],
	}, nil
}
