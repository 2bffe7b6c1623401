package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/models"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

// ErrValidationFailed marks domain-constraint failures detected before any
// ledger computation or persistence happens.
var ErrValidationFailed = errors.New("transaction validation failed")

// FieldError names the specific field a user has to fix.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors collects every failing field of one transaction so the caller
// can surface them all at once instead of one per round trip.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("%v: %s", ErrValidationFailed, strings.Join(msgs, "; "))
}

func (e FieldErrors) Unwrap() error { return ErrValidationFailed }

// ValidateTransaction checks the domain constraints every canonical
// transaction must satisfy before it reaches the ledger: trades carry a
// positive quantity and price, fees are never negative, all numbers are
// finite, and the date is a real calendar date. Sign is carried by the type,
// never by a signed quantity.
func ValidateTransaction(tx *models.CanonicalTransaction) error {
	var errs FieldErrors

	if strings.TrimSpace(tx.Symbol) == "" {
		errs = append(errs, FieldError{Field: "symbol", Message: "is required"})
	}
	if strings.TrimSpace(tx.Type) == "" {
		errs = append(errs, FieldError{Field: "type", Message: "is required"})
	}
	if utils.ParseISODate(tx.Date).IsZero() {
		errs = append(errs, FieldError{Field: "date", Message: fmt.Sprintf("%q is not a valid YYYY-MM-DD or DD/MM/YYYY date", tx.Date)})
	}

	if !isFinite(tx.Price) {
		errs = append(errs, FieldError{Field: "price", Message: "must be a finite number"})
	}

	switch tx.Type {
	case models.TypeBuy, models.TypeSell:
		if tx.Quantity == nil {
			errs = append(errs, FieldError{Field: "quantity", Message: "is required for buy and sell transactions"})
		} else if !isFinite(*tx.Quantity) || *tx.Quantity <= 0 {
			errs = append(errs, FieldError{Field: "quantity", Message: "must be a positive number"})
		}
		if tx.Price <= 0 {
			errs = append(errs, FieldError{Field: "price", Message: "must be positive for buy and sell transactions"})
		}
	case models.TypeDividend:
		if tx.DividendAmount() <= 0 || !isFinite(tx.DividendAmount()) {
			errs = append(errs, FieldError{Field: "price", Message: "dividend amount must be positive"})
		}
	}

	if tx.Fees != nil && (!isFinite(*tx.Fees) || *tx.Fees < 0) {
		errs = append(errs, FieldError{Field: "fees", Message: "must be zero or positive"})
	}
	if tx.TotalAmount != nil && !isFinite(*tx.TotalAmount) {
		errs = append(errs, FieldError{Field: "total_amount", Message: "must be a finite number"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
