package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "notion-webhooks",
	Short: "Notion integration host",
	Long: `Runs the Notion webhook endpoint and drives the Notion API.

The endpoint answers the verification handshake, checks X-Notion-Signature on
every later delivery and fans events out to registered subscribers. Registrations,
the verification token and a delivery audit trail live in the configured database.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("NOTION")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.String("db-driver", driverSQLite, "database driver (sqlite3, postgres)")
	flags.String("dsn", "file:notion.db?cache=shared&_foreign_keys=on", "database connection string")
	flags.String("api-key", "", "Notion integration token")
	flags.String("api-base-url", "", "Notion API base url override")
	flags.String("workspace", "", "workspace name attached to log lines")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json, pretty)")
	flags.Bool("db-debug", false, "log SQL statements")
	for _, name := range []string{"db-driver", "dsn", "api-key", "api-base-url", "workspace", "log-level", "log-format", "db-debug"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(subscribersCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(deliveriesCmd())
	rootCmd.AddCommand(botCmd())
}
