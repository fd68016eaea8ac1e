package scanner_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	forexScanner "github.com/malusev998/forex-scanner"
	"github.com/malusev998/forex-scanner/scanner"
)

type (
	MockFetcher struct {
		mock.Mock
	}

	MockStorage struct {
		mock.Mock
	}
)

func (m *MockFetcher) Fetch(pair string) (forexScanner.Quote, error) {
	args := m.Called(pair)

	return args.Get(0).(forexScanner.Quote), args.Error(1)
}

func (m *MockStorage) Store(quotes []forexScanner.Quote) ([]forexScanner.QuoteWithID, error) {
	args := m.Called(quotes)

	return1 := args.Get(0)

	if return1 == nil {
		return nil, args.Error(1)
	}

	return return1.([]forexScanner.QuoteWithID), args.Error(1)
}

func (m *MockStorage) GetStorageProviderName() string {
	return "MockStorage"
}

func (m *MockStorage) Migrate() error {
	return nil
}

func (m *MockStorage) Drop() error {
	return nil
}

func (m *MockStorage) Close() error {
	return nil
}

func quoteForPair(pair string) forexScanner.Quote {
	return forexScanner.Quote{
		Pair:          pair,
		Rate:          decimal.RequireFromString("1.070123"),
		LastRefreshed: "2024-01-01 00:00:00",
	}
}

func TestRunner_RunOnce(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	fetcher := &MockFetcher{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	fetcher.On("Fetch", "EUR/USD").Return(quoteForPair("EUR/USD"), nil)
	fetcher.On("Fetch", "BAD").Return(forexScanner.Quote{}, fmt.Errorf("%w 'BAD': expected format like EUR/USD", forexScanner.ErrInvalidPair))

	runner := scanner.Runner{Fetcher: fetcher, Out: out, ErrOut: errOut}

	asserts.True(runner.RunOnce([]string{"EUR/USD", "BAD"}))

	errLines := strings.Split(strings.TrimRight(errOut.String(), "\n"), "\n")
	asserts.Len(errLines, 1)
	asserts.Contains(errLines[0], "[ERROR]")
	asserts.Contains(errLines[0], "BAD")

	tableLines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	asserts.Len(tableLines, 3, "header, separator and exactly one data row")
	asserts.Contains(tableLines[0], "Pair")
	asserts.Contains(tableLines[2], "EUR/USD")
	asserts.Contains(tableLines[2], "1.070123")
}

func TestRunner_RunOnceAllFailed(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	fetcher := &MockFetcher{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	fetcher.On("Fetch", mock.Anything).Return(forexScanner.Quote{}, errors.New("an error has occurred"))

	runner := scanner.Runner{Fetcher: fetcher, Out: out, ErrOut: errOut}

	asserts.False(runner.RunOnce([]string{"EUR/USD", "GBP/USD"}))
	asserts.Empty(out.String(), "no table is rendered for an empty pass")
	asserts.Len(strings.Split(strings.TrimRight(errOut.String(), "\n"), "\n"), 2)
}

func TestRunner_RunOncePersists(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	fetcher := &MockFetcher{}
	storage := &MockStorage{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	pairs := make([]string, 0, 3)
	quotes := make([]forexScanner.Quote, 0, 3)

	for i := 0; i < 3; i++ {
		pair := fmt.Sprintf("%s/%s", faker.Currency(), faker.Currency())
		pairs = append(pairs, pair)

		quote := quoteForPair(pair)
		quotes = append(quotes, quote)
		fetcher.On("Fetch", pair).Return(quote, nil)
	}

	quotesWithID := make([]forexScanner.QuoteWithID, 0, len(quotes))

	for i, quote := range quotes {
		quotesWithID = append(quotesWithID, forexScanner.QuoteWithID{Quote: quote, ID: uint64(i), CreatedAt: time.Now()})
	}

	storage.On("Store", quotes).Return(quotesWithID, nil)

	runner := scanner.Runner{
		Fetcher:  fetcher,
		Storages: []forexScanner.Storage{storage},
		Out:      out,
		ErrOut:   errOut,
	}

	asserts.True(runner.RunOnce(pairs))
	storage.AssertCalled(t, "Store", quotes)
	asserts.Empty(errOut.String())
}

func TestRunner_StorageErrorDoesNotFailThePass(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	fetcher := &MockFetcher{}
	storage := &MockStorage{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	fetcher.On("Fetch", "EUR/USD").Return(quoteForPair("EUR/USD"), nil)
	storage.On("Store", mock.Anything).Return(nil, errors.New("error while inserting into storage"))

	runner := scanner.Runner{
		Fetcher:  fetcher,
		Storages: []forexScanner.Storage{storage},
		Out:      out,
		ErrOut:   errOut,
	}

	asserts.True(runner.RunOnce([]string{"EUR/USD"}))
	asserts.Contains(errOut.String(), "MockStorage")
	asserts.Contains(out.String(), "EUR/USD")
}

func TestRunner_RunSingleShot(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	fetcher := &MockFetcher{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	fetcher.On("Fetch", "EUR/USD").Return(quoteForPair("EUR/USD"), nil)

	runner := scanner.Runner{Fetcher: fetcher, Out: out, ErrOut: errOut}

	asserts.True(runner.Run(context.Background(), []string{"EUR/USD"}, 0))
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
	asserts.NotContains(out.String(), "Stopped by user.")
}

func TestRunner_RunRefreshStopsOnCancel(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	fetcher := &MockFetcher{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	fetcher.On("Fetch", "EUR/USD").Return(quoteForPair("EUR/USD"), nil)

	runner := scanner.Runner{Fetcher: fetcher, Out: out, ErrOut: errOut}

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(40*time.Millisecond, cancel)

	defer timer.Stop()

	asserts.True(runner.Run(ctx, []string{"EUR/USD"}, 10*time.Millisecond))
	asserts.Contains(out.String(), "Stopped by user.")
	asserts.Contains(out.String(), "=== ", "section marker is printed before refresh passes")
	asserts.GreaterOrEqual(len(fetcher.Calls), 2)
}

func TestRunner_RunRefreshReportsEmptyFirstPass(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	fetcher := &MockFetcher{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	fetcher.On("Fetch", "EUR/USD").Return(forexScanner.Quote{}, errors.New("an error has occurred"))

	runner := scanner.Runner{Fetcher: fetcher, Out: out, ErrOut: errOut}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	asserts.False(runner.Run(ctx, []string{"EUR/USD"}, time.Minute))
	asserts.Contains(errOut.String(), "No successful quotes fetched; continuing to refresh.")
	asserts.Contains(out.String(), "Stopped by user.")
}
