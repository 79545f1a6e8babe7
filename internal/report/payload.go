// Package report assembles the JSON payloads served to callers from a set of
// statement operations.
package report

// Report names used in saved file names, logs and async requests.
const (
	NameDashboard = "dashboard"
	NameEvents    = "events"
	NameCashback  = "cashback"
	NameSpending  = "spending"
)

type (
	CardEntry struct {
		LastDigits string  `json:"last_digits"`
		TotalSpent float64 `json:"total_spent"`
		Cashback   float64 `json:"cashback"`
	}

	TransactionEntry struct {
		Date        string  `json:"date"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
	}

	// RateEntry carries a null rate when the lookup failed.
	RateEntry struct {
		Currency string   `json:"currency"`
		Rate     *float64 `json:"rate"`
	}

	// PriceEntry carries a null price when the quote was unavailable.
	PriceEntry struct {
		Stock string   `json:"stock"`
		Price *float64 `json:"price"`
	}

	DashboardPayload struct {
		Greeting        string             `json:"greeting"`
		Cards           []CardEntry        `json:"cards"`
		TopTransactions []TransactionEntry `json:"top_transactions"`
		CurrencyRates   []RateEntry        `json:"currency_rates"`
		StockPrices     []PriceEntry       `json:"stock_prices"`
	}

	CategoryEntry struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
	}

	ExpensesSection struct {
		TotalAmount      float64         `json:"total_amount"`
		Main             []CategoryEntry `json:"main"`
		TransfersAndCash []CategoryEntry `json:"transfers_and_cash"`
	}

	IncomeSection struct {
		TotalAmount float64         `json:"total_amount"`
		Main        []CategoryEntry `json:"main"`
	}

	WindowPayload struct {
		Expenses      ExpensesSection `json:"expenses"`
		Income        IncomeSection   `json:"income"`
		CurrencyRates []RateEntry     `json:"currency_rates"`
		StockPrices   []PriceEntry    `json:"stock_prices"`
	}

	// CashbackPayload maps category to the cashback earned in it.
	CashbackPayload map[string]float64

	OperationEntry struct {
		OperatedAt  string  `json:"operated_at"`
		Card        string  `json:"card"`
		Category    string  `json:"category"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
	}

	SpendingPayload struct {
		Category   string           `json:"category"`
		From       string           `json:"from"`
		To         string           `json:"to"`
		Total      float64          `json:"total"`
		Operations []OperationEntry `json:"operations"`
	}
)
