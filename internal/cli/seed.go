package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/awareness-backend/internal/catalog"
	"github.com/yungbote/awareness-backend/internal/data/db"
	"github.com/yungbote/awareness-backend/internal/data/repos"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert training modules and quiz questions from a catalog file",
	Long: "Reads a YAML catalog and upserts modules by slug and questions by text. " +
		"Without --file the built-in catalog is applied.",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		c, err := catalog.Load(file)
		if err != nil {
			return err
		}
		if dryRun {
			questions := 0
			for _, m := range c.Modules {
				questions += len(m.Questions)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d modules, %d questions\n", len(c.Modules), questions)
			return nil
		}

		pg, err := db.NewPostgresService(rt.cfg.Postgres, rt.log)
		if err != nil {
			return fmt.Errorf("init postgres: %w", err)
		}
		defer pg.Close()
		if err := db.Migrate(pg.DB()); err != nil {
			return err
		}

		seeder := catalog.NewSeeder(pg.DB(), rt.log, repos.NewModuleRepo(pg.DB(), rt.log), repos.NewQuizQuestionRepo(pg.DB(), rt.log))
		sum, err := seeder.Apply(cmd.Context(), c)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d modules (%d new), %d questions; %d active in bank\n", sum.Modules, sum.NewModules, sum.Questions, sum.ActiveQuestions)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringP("file", "f", "", "Catalog YAML file")
	seedCmd.Flags().Bool("dry-run", false, "Validate the catalog without writing")
}
