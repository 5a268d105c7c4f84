package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/org-structure-seeder/internal/config"
	"github.com/org-structure-seeder/internal/migrations"
	"github.com/org-structure-seeder/internal/repository"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create (or with --down drop) the hierarchy tables in a SQL store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		store := cfg.Generator.Store
		if store != config.StorePostgres && store != config.StoreSQLite {
			return fmt.Errorf("migrations apply to postgres and sqlite only, got %q", store)
		}

		db, err := repository.ConnectDB(cmd.Context(), store, cfg.Database)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		defer sqlDB.Close()

		if migrateDown {
			if err := migrations.Down(sqlDB, repository.Dialect(store)); err != nil {
				return err
			}
			logger.Info("migrations rolled back", "store", store)
			return nil
		}

		if err := migrations.Up(sqlDB, repository.Dialect(store)); err != nil {
			return err
		}
		logger.Info("migrations applied", "store", store)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back the last migration")
	rootCmd.AddCommand(migrateCmd)
}
