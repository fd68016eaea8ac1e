package forex_scanner

type (
	Fetcher interface {
		Fetch(pair string) (Quote, error)
	}
)
