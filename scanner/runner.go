package scanner

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	forexScanner "github.com/malusev998/forex-scanner"
	"github.com/malusev998/forex-scanner/render"
)

const sectionMarkerFormat = "2006-01-02 15:04:05"

type Runner struct {
	Fetcher  forexScanner.Fetcher
	Storages []forexScanner.Storage
	Debug    bool
	Out      io.Writer
	ErrOut   io.Writer
}

// RunOnce fetches every pair in the given order. A failed pair is
// logged to ErrOut and skipped, it never aborts the pass. When at
// least one quote was collected the table is rendered to Out and the
// quotes are handed to the configured storages.
func (r Runner) RunOnce(pairs []string) bool {
	quotes := make([]forexScanner.Quote, 0, len(pairs))

	for _, pair := range pairs {
		quote, err := r.Fetcher.Fetch(pair)

		if err != nil {
			fmt.Fprintf(r.ErrOut, "[ERROR] %v\n", err)
			continue
		}

		quotes = append(quotes, quote)
	}

	if len(quotes) == 0 {
		return false
	}

	fmt.Fprintln(r.Out, render.Table(quotes))

	if len(r.Storages) > 0 {
		r.persist(quotes)
	}

	return true
}

// Run executes the first pass and, with a positive refresh interval,
// keeps rerunning until the context is cancelled. Cancellation is a
// normal termination path. The result is true when any pass produced
// at least one quote.
func (r Runner) Run(ctx context.Context, pairs []string, refresh time.Duration) bool {
	succeeded := r.RunOnce(pairs)

	if refresh <= 0 {
		return succeeded
	}

	if !succeeded {
		fmt.Fprintln(r.ErrOut, "No successful quotes fetched; continuing to refresh.")
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.Out, "\nStopped by user.")
			return succeeded
		case <-time.After(refresh):
			fmt.Fprintf(r.Out, "\n=== %s ===\n", time.Now().Format(sectionMarkerFormat))

			if r.RunOnce(pairs) {
				succeeded = true
			}
		}
	}
}

// persist fans the pass result out to every configured storage.
// Storage failures are logged, they never fail the pass.
func (r Runner) persist(quotes []forexScanner.Quote) {
	var wg sync.WaitGroup

	mutex := &sync.Mutex{}
	saved := make(map[string][]forexScanner.QuoteWithID)

	wg.Add(len(r.Storages))

	for _, storage := range r.Storages {
		go func(storage forexScanner.Storage) {
			defer wg.Done()

			stored, err := storage.Store(quotes)

			if err != nil {
				fmt.Fprintf(r.ErrOut, "[ERROR] storing quotes in %s: %v\n", storage.GetStorageProviderName(), err)
				return
			}

			mutex.Lock()
			saved[storage.GetStorageProviderName()] = stored
			mutex.Unlock()
		}(storage)
	}

	wg.Wait()

	if !r.Debug {
		return
	}

	for name, stored := range saved {
		for i, quote := range stored {
			fmt.Fprintf(r.ErrOut, "%d\tQuote %s saved to %s: Rate: %s\n", i, quote.Pair, name, quote.Rate)
		}
	}
}
