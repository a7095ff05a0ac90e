// Package main is the entry point for the faqbase CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MikeSquared-Agency/faqbase/internal/config"
	"github.com/MikeSquared-Agency/faqbase/internal/store"
	"github.com/MikeSquared-Agency/faqbase/internal/store/postgres"
	"github.com/MikeSquared-Agency/faqbase/internal/store/sqlite"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs the server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "faqbase",
	Short: "FAQ knowledge base with chat transcript extraction",
	Long: `faqbase serves a searchable FAQ and document knowledge base over a JSON API.

Admins upload exported chat transcripts; the extractor turns them into
candidate question/answer pairs for review. The same extractor is available
offline through the extract and import subcommands.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./faqbase.yaml or ~/.config/faqbase/config.yaml)")
}

func initConfig() {
	config.Bind(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("faqbase")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "faqbase"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	return config.Load(viper.GetViper())
}

// openStore picks the backend from the URL scheme: postgres:// and
// postgresql:// use PostgreSQL, anything else is a SQLite file path.
func openStore(ctx context.Context, url string, logger *slog.Logger) (store.Store, error) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		db, err := postgres.New(ctx, url)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	db, err := sqlite.New(ctx, url, logger)
	if err != nil {
		return nil, err
	}
	if !db.FullText() {
		logger.Warn("sqlite built without fts5, searching with LIKE only")
	}
	return db, nil
}

func setupLogging(w io.Writer, level, format string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
