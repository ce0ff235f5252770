package cli

import (
	"context"
	"fmt"

	"toolrent-backend/internal/config"
	"toolrent-backend/internal/logger"
	"toolrent-backend/internal/repository"
	"toolrent-backend/internal/repository/memory"
	"toolrent-backend/internal/repository/postgres"
	"toolrent-backend/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (environment only when empty)")
}

var rootCmd = &cobra.Command{
	Use:   "toolrent",
	Short: "Tool rental inventory ledger",
	Long: `toolrent tracks rentable tool units, customers and loans, and keeps an
append-only kardex of every inventory movement. Run "toolrent serve" to start
the HTTP API and the overdue report schedule.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app holds the wired store and services shared by every subcommand.
type app struct {
	cfg      *config.Config
	store    repository.Store
	catalog  service.CatalogService
	customer service.CustomerService
	rental   service.RentalService
	ledger   service.LedgerService
	report   service.ReportService
}

func (a *app) Close() error {
	return a.store.Close()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

// newApp opens the configured store and builds the services over it.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rate, err := cfg.HouseFineRate()
	if err != nil {
		store.Close()
		return nil, err
	}

	catalog := service.NewCatalogService(store,
		service.WithHouseFineRate(rate),
		service.WithMaxUnitsPerOperation(cfg.Rental.MaxUnitsPerOperation),
	)

	return &app{
		cfg:      cfg,
		store:    store,
		catalog:  catalog,
		customer: service.NewCustomerService(store),
		rental:   service.NewRentalService(store),
		ledger:   service.NewLedgerService(store),
		report:   service.NewReportService(store),
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Store.Type {
	case config.StoreTypeMemory:
		logger.Info("Using in-memory store")
		return memory.NewStore(), nil
	case config.StoreTypePostgres:
		logger.Info("Connecting to database...",
			"driver", cfg.Database.Driver,
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Database,
			"user", cfg.Database.User)
		db, err := postgres.Open(ctx, cfg.Database.Driver, cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, err
		}
		logger.Info("Database connection established")
		return postgres.NewStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}
