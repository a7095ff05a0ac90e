package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/faqbase/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump FAQs as YAML or JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	exportCmd.Flags().String("category", "", "export only this category")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	formatFlag, _ := cmd.Flags().GetString("format")
	category, _ := cmd.Flags().GetString("category")
	output, _ := cmd.Flags().GetString("output")

	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := openStore(ctx, cfg.DatabaseURL, slog.Default())
	if err != nil {
		return err
	}
	defer db.Close()

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	n, err := export.Write(ctx, db, w, format, category)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Exported %d FAQ(s)\n", n)
	return nil
}
