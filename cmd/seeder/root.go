package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/org-structure-seeder/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Seed a company/branch/department/employee hierarchy for load testing",
	Long: `seeder generates a synthetic four-level organization hierarchy
(Company -> Branch -> Department -> Employee) and bulk-loads it into a store.

Relationship modes:
- reference: children carry their parent's id
- edge:      parent/child links are written as separate edge records

Stores: postgres, sqlite, redis, dynamodb, memory`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute запускает CLI
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("store", config.StorePostgres, "store: postgres, sqlite, redis, dynamodb, memory")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("generator.store", rootCmd.PersistentFlags().Lookup("store"))

	config.SetDefaults(viper.GetViper())
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "failed to read config:", err)
			os.Exit(1)
		}
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
