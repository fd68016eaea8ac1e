package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	forexScanner "github.com/malusev998/forex-scanner"
)

type AlphaVantageFetcher struct {
	Ctx     context.Context
	URL     string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

// Fetch performs one request against the CURRENCY_EXCHANGE_RATE
// endpoint and turns the payload into a Quote. The payload is
// inspected in a fixed order: transport error, upstream status,
// advisory note, provider error, missing data block, missing rate,
// numeric parse failure. The first match wins.
func (f AlphaVantageFetcher) Fetch(pair string) (forexScanner.Quote, error) {
	base, quote, err := forexScanner.ParsePair(pair)

	if err != nil {
		return forexScanner.Quote{}, err
	}

	url := f.URL

	if url == "" {
		url = AlphaVantageURL
	}

	ctx := f.Ctx

	if ctx == nil {
		ctx = context.Background()
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return forexScanner.Quote{}, err
	}

	req.Header.Add("Accept", "application/json")

	q := req.URL.Query()
	q.Add("function", "CURRENCY_EXCHANGE_RATE")
	q.Add("from_currency", base)
	q.Add("to_currency", quote)
	q.Add("apikey", f.APIKey)
	req.URL.RawQuery = q.Encode()

	client := f.Client

	if client == nil {
		client = &http.Client{}
	}

	res, err := client.Do(req)

	if err != nil {
		return forexScanner.Quote{}, &NetworkError{Pair: pair, Err: err}
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return forexScanner.Quote{}, StatusError{Pair: pair, Code: res.StatusCode}
	}

	var body []byte
	body, _ = ioutil.ReadAll(res.Body)

	var payload map[string]json.RawMessage

	if err := json.Unmarshal(body, &payload); err != nil {
		return forexScanner.Quote{}, fmt.Errorf("%w for %s: %v", ErrMalformedResponse, pair, err)
	}

	if note, ok := payload["Note"]; ok {
		return forexScanner.Quote{}, fmt.Errorf("%w for %s: %s", ErrThrottled, pair, rawString(note))
	}

	if message, ok := payload["Error Message"]; ok {
		return forexScanner.Quote{}, fmt.Errorf("%w for %s: %s", ErrProvider, pair, rawString(message))
	}

	block, ok := payload["Realtime Currency Exchange Rate"]

	if !ok {
		return forexScanner.Quote{}, fmt.Errorf("%w for %s: %s", ErrMalformedResponse, pair, body)
	}

	// An empty object counts as an absent block, a non-empty one is
	// present even when it only carries fields we do not track.
	var blockKeys map[string]json.RawMessage

	if err := json.Unmarshal(block, &blockKeys); err != nil || len(blockKeys) == 0 {
		return forexScanner.Quote{}, fmt.Errorf("%w for %s: %s", ErrMalformedResponse, pair, body)
	}

	var data realtimeExchangeRate

	if err := json.Unmarshal(block, &data); err != nil {
		return forexScanner.Quote{}, fmt.Errorf("%w for %s: %s", ErrMalformedResponse, pair, body)
	}

	if data.ExchangeRate == nil {
		return forexScanner.Quote{}, fmt.Errorf("%w for %s: %s", ErrMissingRate, pair, body)
	}

	rate, err := decimal.NewFromString(*data.ExchangeRate)

	if err != nil {
		return forexScanner.Quote{}, fmt.Errorf("%w for %s: %v", ErrInvalidNumeric, pair, err)
	}

	bid, err := parseOptionalDecimal(data.BidPrice)

	if err != nil {
		return forexScanner.Quote{}, fmt.Errorf("%w for %s: %v", ErrInvalidNumeric, pair, err)
	}

	ask, err := parseOptionalDecimal(data.AskPrice)

	if err != nil {
		return forexScanner.Quote{}, fmt.Errorf("%w for %s: %v", ErrInvalidNumeric, pair, err)
	}

	lastRefreshed := data.LastRefreshed

	if lastRefreshed == "" {
		lastRefreshed = "N/A"
	}

	return forexScanner.Quote{
		Pair:          fmt.Sprintf("%s/%s", base, quote),
		Rate:          rate,
		Bid:           bid,
		Ask:           ask,
		LastRefreshed: lastRefreshed,
	}, nil
}

// parseOptionalDecimal treats a nil value as absent. A value that is
// present has to parse, an empty string is a parse failure, not an
// absent field.
func parseOptionalDecimal(value *string) (decimal.NullDecimal, error) {
	if value == nil {
		return decimal.NullDecimal{}, nil
	}

	parsed, err := decimal.NewFromString(*value)

	if err != nil {
		return decimal.NullDecimal{}, err
	}

	return decimal.NullDecimal{Decimal: parsed, Valid: true}, nil
}
