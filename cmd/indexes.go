package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pos-backend/internal/database"
	"pos-backend/internal/logger"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes and exit",
	Long: `Create the unique and sort indexes on the estimates and orders
collections. Existing indexes are left untouched, so the command is safe to
run on every deploy.`,
	Args: cobra.NoArgs,
	RunE: runIndexes,
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}

func runIndexes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("indexes")

	client, err := database.Connect(cmd.Context(), cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("disconnect error")
		}
	}()

	db := client.Database(cfg.DBName)
	if err := database.EnsureIndexes(db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	log.Info().Str("db", db.Name()).Msg("indexes ensured")
	return nil
}
