package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	forexScanner "github.com/malusev998/forex-scanner"
)

var (
	rootCmd = &cobra.Command{
		Use:     "forex-scanner",
		Short:   "Live Forex rates from Alpha Vantage",
		Version: "v1.0.0",
	}
	debug      bool
	configFile string
)

type (
	Config struct {
		Ctx context.Context
		// URL overrides the Alpha Vantage endpoint, empty means the
		// real one.
		URL string
		// Storages overrides the sinks built from the config file.
		Storages []forexScanner.Storage
	}
)

func Execute(config *Config) error {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug flag")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./config.yml", "Path to config file")

	// Flags are parsed by Execute, the config path is only known once
	// the initializers run.
	cobra.OnInitialize(func() {
		absolutePath, _ := filepath.Abs(configFile)

		viper.SetConfigFile(absolutePath)
		_ = viper.ReadInConfig()
	})

	viper.SetEnvPrefix("FOREX_SCANNER")
	viper.AutomaticEnv()
	_ = viper.BindEnv("api_key", "ALPHAVANTAGE_API_KEY")

	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(scan(config))

	return rootCmd.Execute()
}
