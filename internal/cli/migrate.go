package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yatube/yatube/internal/database"
	"github.com/yatube/yatube/internal/output"
	"github.com/yatube/yatube/pkg/logger"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}

		tables := make([]string, 0, len(database.Models()))
		for _, model := range database.Models() {
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(model); err != nil {
				return fmt.Errorf("reading schema: %w", err)
			}
			tables = append(tables, stmt.Schema.Table)
		}

		logger.Info("schema_migrated", map[string]interface{}{
			"driver": cfg.DB.Driver,
			"tables": tables,
		})

		if flagJSON {
			return output.JSON(cmd.OutOrStdout(), map[string]interface{}{"tables": tables})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%d tables).\n", len(tables))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
