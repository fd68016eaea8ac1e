package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	forexScanner "github.com/malusev998/forex-scanner"
	"github.com/malusev998/forex-scanner/fetchers"
	"github.com/malusev998/forex-scanner/scanner"
	"github.com/malusev998/forex-scanner/storage"
)

var (
	ErrNoQuotes        = errors.New("no pass produced any quotes")
	ErrAPIKeyMissing   = errors.New("alpha vantage API key not provided, use --api-key or set ALPHAVANTAGE_API_KEY")
	ErrNoPairs         = errors.New("at least one currency pair has to be provided")
	ErrNegativeRefresh = errors.New("refresh interval has to be zero or positive")
)

var defaultPairs = []string{"EUR/USD", "GBP/USD", "USD/JPY"}

// loadPairs normalizes the --pairs input. Tokens may be separated by
// spaces or commas.
func loadPairs(raw []string) ([]string, error) {
	pairs := make([]string, 0, len(raw))

	for _, entry := range raw {
		for _, token := range strings.FieldsFunc(entry, func(r rune) bool { return r == ',' || r == ' ' }) {
			pairs = append(pairs, strings.ToUpper(strings.TrimSpace(token)))
		}
	}

	if len(pairs) == 0 {
		return nil, ErrNoPairs
	}

	return pairs, nil
}

func getMysqlDSN(config map[string]string) string {
	mysqlDriverConfig := mysql.NewConfig()
	mysqlDriverConfig.User = config["user"]
	mysqlDriverConfig.Passwd = config["password"]
	mysqlDriverConfig.Addr = config["addr"]
	mysqlDriverConfig.Net = "tcp"
	mysqlDriverConfig.DBName = config["db"]

	return mysqlDriverConfig.FormatDSN()
}

func createStorages(ctx context.Context, config *Config, store []string) ([]forexScanner.Storage, error) {
	if len(store) == 0 {
		return config.Storages, nil
	}

	providers, err := storage.ConvertToProvidersFromStringSlice(store)

	if err != nil {
		return nil, err
	}

	mysqlConfig := viper.GetStringMapString("databases.mysql")
	mongodbConfig := viper.GetStringMapString("databases.mongodb")

	baseConfig := storage.BaseConfig{
		Cxt:     ctx,
		Migrate: viper.GetBool("migrate"),
	}

	storageConfig := map[storage.Provider]interface{}{
		storage.MySQL: storage.MySQLConfig{
			BaseConfig:       baseConfig,
			ConnectionString: getMysqlDSN(mysqlConfig),
			TableName:        mysqlConfig["table"],
		},
		storage.MongoDB: storage.MongoDBConfig{
			BaseConfig:       baseConfig,
			ConnectionString: mongodbConfig["uri"],
			Database:         mongodbConfig["db"],
			Collection:       mongodbConfig["collection"],
		},
	}

	storages := make([]forexScanner.Storage, 0, len(providers))

	for _, provider := range providers {
		st, err := storage.NewStorage(provider, storageConfig[provider])

		if err != nil {
			return nil, err
		}

		storages = append(storages, st)
	}

	return storages, nil
}

func scan(config *Config) *cobra.Command {
	var (
		apiKey   string
		rawPairs []string
		refresh  int
		timeout  time.Duration
		store    []string
	)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Fetch live Forex rates and render them as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				apiKey = viper.GetString("api_key")
			}

			if apiKey == "" {
				return ErrAPIKeyMissing
			}

			if refresh < 0 {
				return ErrNegativeRefresh
			}

			pairs, err := loadPairs(rawPairs)

			if err != nil {
				return err
			}

			ctx := config.Ctx

			if ctx == nil {
				ctx = context.Background()
			}

			storages, err := createStorages(ctx, config, store)

			if err != nil {
				return err
			}

			defer func() {
				for _, st := range storages {
					if err := st.Close(); err != nil {
						fmt.Fprintf(cmd.OutOrStderr(), "[ERROR] closing %s: %v\n", st.GetStorageProviderName(), err)
					}
				}
			}()

			runner := scanner.Runner{
				Fetcher: fetchers.AlphaVantageFetcher{
					Ctx:     ctx,
					URL:     config.URL,
					APIKey:  apiKey,
					Timeout: timeout,
				},
				Storages: storages,
				Debug:    debug,
				Out:      cmd.OutOrStdout(),
				ErrOut:   cmd.OutOrStderr(),
			}

			if !runner.Run(ctx, pairs, time.Duration(refresh)*time.Second) {
				return ErrNoQuotes
			}

			return nil
		},
	}

	scanCmd.SilenceUsage = true
	scanCmd.Flags().StringVar(&apiKey, "api-key", "", "Alpha Vantage API key (or set ALPHAVANTAGE_API_KEY)")
	scanCmd.Flags().StringSliceVar(&rawPairs, "pairs", defaultPairs, "Currency pairs to fetch (format BASE/QUOTE), separated by spaces or commas")
	scanCmd.Flags().IntVar(&refresh, "refresh", 0, "Refresh interval in seconds, 0 fetches once")
	scanCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "HTTP request timeout")
	scanCmd.Flags().StringSliceVar(&store, "store", nil, "Quote sinks to save every pass to (mysql, mongodb)")

	return scanCmd
}
