package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/faqbase/internal/export"
	"github.com/MikeSquared-Agency/faqbase/internal/extractor"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract question/answer pairs from chat transcripts",
	Long: `Extract runs the transcript extractor over each file (use - for stdin)
and prints the pairs found, in file order, without touching the database.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("format", "json", "output format: json or yaml")
	extractCmd.Flags().Float64("min-confidence", 0, "drop pairs scoring below this confidence")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	minConf, _ := cmd.Flags().GetFloat64("min-confidence")

	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	pairs := []extractor.QAPair{}
	for _, path := range args {
		text, err := readInput(path)
		if err != nil {
			return err
		}
		found := extractor.Filter(extractor.Extract(text), minConf)
		fmt.Fprintf(os.Stderr, "%s: %d pair(s)\n", path, len(found))
		pairs = append(pairs, found...)
	}

	return export.Encode(cmd.OutOrStdout(), format, pairs)
}

func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
