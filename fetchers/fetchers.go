package fetchers

import (
	"encoding/json"
	"errors"
	"fmt"
)

const AlphaVantageURL = "https://www.alphavantage.co/query"

var (
	ErrNetwork           = errors.New("network error")
	ErrUpstreamStatus    = errors.New("unexpected upstream status")
	ErrThrottled         = errors.New("provider throttled the request")
	ErrProvider          = errors.New("provider error")
	ErrMalformedResponse = errors.New("unexpected response format")
	ErrMissingRate       = errors.New("missing exchange rate data")
	ErrInvalidNumeric    = errors.New("invalid numeric data")
)

type (
	// realtimeExchangeRate mirrors the "Realtime Currency Exchange Rate"
	// block of the Alpha Vantage payload. Bid and ask are not returned
	// for every pair, the pointers keep absent and present-but-empty
	// apart.
	realtimeExchangeRate struct {
		ExchangeRate  *string `json:"5. Exchange Rate"`
		LastRefreshed string  `json:"6. Last Refreshed"`
		BidPrice      *string `json:"8. Bid Price"`
		AskPrice      *string `json:"9. Ask Price"`
	}
)

// StatusError is returned for any non-200 upstream status. It matches
// ErrUpstreamStatus with errors.Is and exposes the numeric code.
type StatusError struct {
	Pair string
	Code int
}

func (s StatusError) Error() string {
	return fmt.Sprintf("alpha vantage returned status %d for %s", s.Code, s.Pair)
}

func (s StatusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}

// NetworkError wraps the transport level cause and matches ErrNetwork
// with errors.Is.
type NetworkError struct {
	Pair string
	Err  error
}

func (n *NetworkError) Error() string {
	return fmt.Sprintf("network error while fetching %s: %v", n.Pair, n.Err)
}

func (n *NetworkError) Unwrap() error {
	return n.Err
}

func (n *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func rawString(raw json.RawMessage) string {
	var str string

	if err := json.Unmarshal(raw, &str); err != nil {
		return string(raw)
	}

	return str
}
