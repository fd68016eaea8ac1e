package forex_scanner

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a single exchange rate snapshot for one currency pair.
// Bid and Ask are optional, the provider does not return them for
// every pair.
type Quote struct {
	Pair          string
	Rate          decimal.Decimal
	Bid           decimal.NullDecimal
	Ask           decimal.NullDecimal
	LastRefreshed string
}

type QuoteWithID struct {
	Quote
	ID        interface{}
	CreatedAt time.Time
}
