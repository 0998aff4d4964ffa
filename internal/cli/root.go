package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yatube/yatube/internal/config"
	"github.com/yatube/yatube/internal/database"
	"gorm.io/gorm"
)

var (
	flagJSON   bool
	flagSQLite string

	cfg *config.Config
	db  *gorm.DB
)

var rootCmd = &cobra.Command{
	Use:   "yatubectl",
	Short: "Yatube admin CLI: manage users, groups and posts",
	Long: `yatubectl manages a Yatube database directly, without going through
the web interface. It reads the same environment (and .env file) as the server.

Get started:
  yatubectl migrate                       Create or update the schema
  yatubectl user create leo --password X  Add a user
  yatubectl group create "Cats"           Add a group (slug derived from title)
  yatubectl post list --group cats        List a group's posts`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if flagSQLite != "" {
			cfg.DB.Driver = config.DriverSQLite
			cfg.DB.SQLitePath = flagSQLite
		}

		var err error
		db, err = database.Open(cfg.DB)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeDB()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagSQLite, "sqlite", "", "Use this sqlite file instead of the configured database")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if closeErr := closeDB(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func closeDB() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
