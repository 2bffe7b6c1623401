package models

// SecurityPosition is the ledger's running state for one security. It is
// always derived fresh by replaying the full transaction history, never
// persisted, so it stays a pure function of that history.
type SecurityPosition struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	Name     string `json:"name"`
	Currency string `json:"currency"`

	Quantity  float64 `json:"quantity"`
	TotalCost float64 `json:"total_cost"`

	// LastPrice is the most recent trade's unit price, used as a valuation
	// proxy. It is not a live market quote and dividends never update it.
	LastPrice float64 `json:"last_price"`

	RealizedGainLoss  float64 `json:"realized_gain_loss"`
	DividendsReceived float64 `json:"dividends_received"`
	FrankingCredits   float64 `json:"franking_credits"`
}

// MarketValue is the position's worth at the last observed price.
func (p *SecurityPosition) MarketValue() float64 {
	return p.Quantity * p.LastPrice
}

// UnrealizedGainLoss is the paper profit on currently-held shares.
func (p *SecurityPosition) UnrealizedGainLoss() float64 {
	return p.Quantity*p.LastPrice - p.TotalCost
}

// TotalReturn is realized + unrealized gains plus dividend income.
func (p *SecurityPosition) TotalReturn() float64 {
	return p.UnrealizedGainLoss() + p.RealizedGainLoss + p.DividendsReceived
}

// Holding is one row of the current-holdings summary returned to clients.
type Holding struct {
	Symbol             string  `json:"symbol"`
	Exchange           string  `json:"exchange"`
	Name               string  `json:"name"`
	LastPrice          float64 `json:"last_price"`
	Quantity           float64 `json:"quantity"`
	CurrentValue       float64 `json:"current_value"`
	CostBasis          float64 `json:"cost_basis"`
	UnrealizedGainLoss float64 `json:"unrealized_gain_loss"`
	RealizedGainLoss   float64 `json:"realized_gain_loss"`
	DividendsReceived  float64 `json:"dividends_received"`
	TotalReturn        float64 `json:"total_return"`
	Currency           string  `json:"currency"`
}

// PortfolioSnapshotPoint is one point of the portfolio-value time series:
// the value immediately after all transactions on that date, broken down by
// market so clients can slice the chart without a second ledger run.
type PortfolioSnapshotPoint struct {
	Date           string             `json:"date"` // YYYY-MM-DD
	TotalValue     float64            `json:"total_value"`
	PerMarketValue map[string]float64 `json:"per_market_value"`
}

// DividendIncome aggregates dividend receipts for one security.
type DividendIncome struct {
	Symbol          string  `json:"symbol"`
	Exchange        string  `json:"exchange"`
	Name            string  `json:"name"`
	Currency        string  `json:"currency"`
	Amount          float64 `json:"amount"`
	FrankingCredits float64 `json:"franking_credits"`
	Payments        int     `json:"payments"`
}

// AllocationSlice is one bucket of a grouping reduction (by market, currency,
// security or transaction type) for summary charts.
type AllocationSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// PortfolioSnapshot is a persisted total-value record used for long-run
// performance charting.
type PortfolioSnapshot struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	Date       string  `json:"date"`
	TotalValue float64 `json:"total_value"`
	BrokerID   int64   `json:"broker_id,omitempty"`
}

// Security is a reference-data row resolved or created during import.
type Security struct {
	ID       int64  `json:"id"`
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
	Name     string `json:"name"`
}

// Broker is a reference-data row for the account that sourced a transaction.
type Broker struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
