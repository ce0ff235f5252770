package cli

import (
	"toolrent-backend/internal/config"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/repository/postgres"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("print", false, "Print the schema statements instead of applying them")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long:  `Apply the PostgreSQL schema. Statements are idempotent and safe to run on every deploy.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if printOnly, _ := cmd.Flags().GetBool("print"); printOnly {
			for _, stmt := range postgres.Migrations() {
				cmd.Println(stmt + ";")
			}
			return nil
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Store.Type != config.StoreTypePostgres {
			logger.Info("Nothing to migrate", "store", cfg.Store.Type)
			return nil
		}

		db, err := postgres.Open(cmd.Context(), cfg.Database.Driver, cfg.GetDatabaseConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		logger.Info("Schema migrated", "statements", len(postgres.Migrations()))
		return nil
	},
}
