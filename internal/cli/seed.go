package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/barracksmedia/site-assistant/internal/catalog"
	"github.com/barracksmedia/site-assistant/internal/db"
	"github.com/spf13/cobra"
)

var (
	seedWipe bool
	seedFile string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a catalog file into SurrealDB",
	Long: `Validate a catalog file and upsert its services and episodes into
SurrealDB. Records are keyed by slug, so seeding twice is safe.

Inactive and untitled records are skipped.

Examples:
  assistant seed
  assistant seed --file configs/catalog.yaml
  assistant seed --wipe`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "catalog file (default $CATALOG_FILE)")
	seedCmd.Flags().BoolVar(&seedWipe, "wipe", false, "delete all catalog and rate-limit data first")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	path := seedFile
	if path == "" {
		path = cfg.CatalogFile
	}
	file, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}

	dbClient, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(dbClient, cmd.ErrOrStderr())

	if seedWipe {
		if err := dbClient.WipeData(ctx); err != nil {
			return fmt.Errorf("wipe database: %w", err)
		}
	}

	seeded, skipped, err := dbClient.Seed(ctx, file.Services, file.Episodes)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	counts, err := dbClient.QueryCatalogCounts(ctx)
	if err != nil {
		return fmt.Errorf("count catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.successStyle().Render("✓ Seeded "+path))
	fmt.Fprintf(out, "  Records written:   %d\n", seeded)
	fmt.Fprintf(out, "  Records skipped:   %d\n", skipped)
	fmt.Fprintf(out, "  Active services:   %d\n", counts.Services)
	fmt.Fprintf(out, "  Active episodes:   %d\n", counts.Episodes)
	return nil
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired rate-limit windows from SurrealDB",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		dbClient, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB(dbClient, cmd.ErrOrStderr())

		n, err := db.NewRateLimitStore(dbClient).Purge(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("purge rate limits: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired windows\n", n)
		return nil
	},
}
