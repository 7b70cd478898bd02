package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/spacedrep/internal/bootstrap"
	"github.com/at-ishikawa/spacedrep/internal/database"
	"github.com/at-ishikawa/spacedrep/internal/datasync"
	"github.com/at-ishikawa/spacedrep/internal/learning"
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migration commands",
	}

	migrateCmd.AddCommand(newMigrateSchemaCommand())
	migrateCmd.AddCommand(newMigrateImportDBCommand())

	return migrateCmd
}

func newMigrateSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				db, err := openDatabase(ctx, app, cfg)
				if err != nil {
					return err
				}
				applied, err := database.Migrate(ctx, db)
				if err != nil {
					return fmt.Errorf("database.Migrate() > %w", err)
				}
				for _, name := range applied {
					printf(cmd.OutOrStdout(), "  [APPLIED]  %s\n", name)
				}
				return nil
			})
		},
	}
}

func newMigrateImportDBCommand() *cobra.Command {
	var dryRun bool
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   "import-db",
		Short: "Import cards and review logs from YAML files into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				db, err := openDatabase(ctx, app, cfg)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				importer := datasync.NewImporter(
					learning.NewYAMLRepository(cfg.Storage.CardsDirectory),
					learning.NewDBRepository(db),
					w,
				)
				opts := datasync.ImportOptions{
					DryRun:         dryRun,
					UpdateExisting: updateExisting,
				}
				result, err := importer.Import(ctx, opts)
				if err != nil {
					return fmt.Errorf("importer.Import() > %w", err)
				}

				printf(w, "\nImport Summary:\n")
				if opts.DryRun {
					printf(w, "  (dry-run mode, no changes made)\n")
				}
				printf(w, "  Cards:        %d new, %d skipped, %d updated\n", result.CardsNew, result.CardsSkipped, result.CardsUpdated)
				printf(w, "  Review logs:  %d new, %d skipped\n", result.LogsNew, result.LogsSkipped)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without modifying the database")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Update the scheduling state of cards that already exist")
	return cmd
}
