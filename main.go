package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/schema"
	"github.com/Zachkp/portfolio/internal/seed"
	"github.com/Zachkp/portfolio/internal/store"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	seedReset bool
)

var rootCmd = &cobra.Command{
	Use:           "portfolio",
	Short:         "Personal portfolio site",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = logging.New(cfg.LogLevel, cfg.Debug())
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, dialect, err := store.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		return store.Migrate(db, dialect, logger)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load portfolio content from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := seed.LoadFile(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, db, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := seed.Apply(ctx, st, doc, seedReset, logger)
		if err != nil {
			return fmt.Errorf("seed %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "delete existing content before loading")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// openStore connects to the configured database, optionally migrates it,
// and resolves the store against the live schema.
func openStore(ctx context.Context, migrate bool) (*store.Store, *sql.DB, error) {
	db, dialect, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if migrate {
		if err := store.Migrate(db, dialect, logger); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	sch, err := schema.Detect(ctx, func(ctx context.Context, table string) ([]string, error) {
		return store.Columns(ctx, db, dialect, table)
	}, cfg.SkillCategories)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("detect schema: %w", err)
	}

	logger.Info("Database ready",
		zap.String("dialect", dialect.String()),
		zap.Strings("project_columns", sch.Projects.Names()))
	return store.New(db, dialect, sch), db, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
