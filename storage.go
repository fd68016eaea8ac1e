package forex_scanner

type Storage interface {
	Store([]Quote) ([]QuoteWithID, error)
	GetStorageProviderName() string
	Migrate() error
	Drop() error
	Close() error
}
