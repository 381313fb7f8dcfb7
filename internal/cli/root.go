// Package cli provides the command-line interface for the site assistant.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/barracksmedia/site-assistant/internal/client"
	"github.com/barracksmedia/site-assistant/internal/config"
	"github.com/barracksmedia/site-assistant/internal/db"
	"github.com/barracksmedia/site-assistant/internal/server"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string
	noColor   bool

	cfg config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Barracks Media site assistant",
	Long: `assistant talks to the Barracks Media site assistant.

Ask the running server a question, dry-run the matching pipeline against a
local catalog, seed the SurrealDB catalog or inspect server statistics.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if noColor {
			theme = plainTheme
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "server URL (default $ASSISTANT_URL or "+client.DefaultEndpoint+")")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable styled output")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(purgeCmd)
}

// apiClient returns a client for the configured server.
func apiClient() *client.Client {
	return client.New(serverURL)
}

// cliLogger logs to stderr at debug level with -v and stays quiet otherwise.
func cliLogger() *slog.Logger {
	if !verbose {
		return config.Discard()
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// connectDB opens SurrealDB with the environment settings and ensures the
// schema exists.
func connectDB(ctx context.Context) (*db.Client, error) {
	dbClient, err := db.NewClient(ctx, server.DBConfig(cfg), cliLogger())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := dbClient.InitSchema(ctx); err != nil {
		_ = dbClient.Close(ctx)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return dbClient, nil
}

func closeDB(dbClient *db.Client, w io.Writer) {
	if err := dbClient.Close(context.Background()); err != nil {
		fmt.Fprintf(w, "Warning: failed to close database: %v\n", err)
	}
}
