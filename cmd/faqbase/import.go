package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/faqbase/internal/events"
	"github.com/MikeSquared-Agency/faqbase/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import PATH...",
	Short: "Extract pairs from transcripts and add them to the knowledge base",
	Long: `Import discovers .txt transcripts under each PATH (directories are walked
recursively), extracts question/answer pairs and bulk-inserts those whose
question is not already stored. Imported files are recorded by content digest
in a state file, so re-running the command only processes new transcripts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("category", "", "category assigned to imported FAQs")
	importCmd.Flags().Float64("min-confidence", 0, "drop pairs scoring below this confidence")
	importCmd.Flags().Bool("dry-run", false, "extract and report without writing")
	importCmd.Flags().String("state", "", "state file (default: FAQBASE_IMPORT_STATE)")
	importCmd.Flags().String("source", "import", "source label for published events")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	category, _ := cmd.Flags().GetString("category")
	minConf, _ := cmd.Flags().GetFloat64("min-confidence")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	statePath, _ := cmd.Flags().GetString("state")
	source, _ := cmd.Flags().GetString("source")
	if statePath == "" {
		statePath = cfg.ImportStatePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg.DatabaseURL, slog.Default())
	if err != nil {
		return err
	}
	defer db.Close()

	var pub events.Publisher = events.Nop{}
	if cfg.NatsURL != "" && !dryRun {
		client, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("NATS unavailable, events disabled", "error", err)
		} else {
			defer client.Close()
			pub = client
		}
	}

	runner := importer.NewRunner(importer.Config{
		Paths:         args,
		Category:      category,
		MinConfidence: minConf,
		DryRun:        dryRun,
		StatePath:     statePath,
		Source:        source,
	}, db, pub, slog.Default())

	summary, err := runner.Run(ctx)
	summary.Write(cmd.OutOrStdout())
	return err
}
