package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/awareness-backend/internal/data/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		pg, err := db.NewPostgresService(rt.cfg.Postgres, rt.log)
		if err != nil {
			return fmt.Errorf("init postgres: %w", err)
		}
		defer pg.Close()

		if err := db.Migrate(pg.DB()); err != nil {
			return err
		}
		rt.log.Info("migration complete")
		return nil
	},
}
