// dotorictl is the operator CLI: schema migrations and the trash
// retention purge run through it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dotoriham/backend/internal/config"
	"github.com/dotoriham/backend/internal/repository/postgres"
	"github.com/dotoriham/backend/internal/repository/postgres/migrations"
	"github.com/dotoriham/backend/internal/service"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

var rootCmd = &cobra.Command{
	Use:   "dotorictl",
	Short: "Bookmark service operations tool",
}

// migrate commands
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := migrations.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.MigrateUp(db); err != nil {
			return err
		}

		fmt.Println("migrations applied")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := migrations.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		version, dirty, err := migrations.Version(db)
		if err != nil {
			return err
		}

		fmt.Printf("version: %d dirty: %v\n", version, dirty)
		return nil
	},
}

// trash commands
var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Manage the bookmark trash",
}

var purgeDays int

var trashPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Hard-delete trash entries past the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		ctx := context.Background()
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		bookmarkRepo := postgres.NewBookmarkRepository(repoConfig)
		folderRepo := postgres.NewFolderRepository(repoConfig)
		accountFolderRepo := postgres.NewAccountFolderRepository(repoConfig)
		txManager := postgres.NewTransactionManager(pool, logger)

		trashService := service.NewTrashService(bookmarkRepo, folderRepo, accountFolderRepo, txManager, nil, logger)

		retention := purgeDays
		if retention <= 0 {
			retention = cfg.TrashRetentionDays
		}

		removed, err := trashService.PurgeExpired(ctx, retention)
		if err != nil {
			return err
		}

		fmt.Printf("purged %d bookmarks older than %d days\n", removed, retention)
		return nil
	},
}

func init() {
	trashPurgeCmd.Flags().IntVar(&purgeDays, "days", 0, "retention window in days (defaults to TRASH_RETENTION_DAYS)")

	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
	trashCmd.AddCommand(trashPurgeCmd)
	rootCmd.AddCommand(migrateCmd, trashCmd)
}
