package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/faqbase/internal/store/sqlite"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestExtractCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.txt")
	transcript := "10:00\t田中\t解約はどうすればいいですか？\n10:01\tサポート\tはい、マイページから手続きできます。\n"
	require.NoError(t, os.WriteFile(path, []byte(transcript), 0o644))

	out := execute(t, "extract", "--format", "yaml", path)

	assert.Contains(t, out, "question: 解約はどうすればいいですか？")
	assert.Contains(t, out, "question_author: 田中")
	assert.Contains(t, out, "confidence: 0.8")
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "faqbase dev\n", execute(t, "version"))
}

func TestOpenStore_SQLitePath(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "faq.db")

	db, err := openStore(context.Background(), path, logger)
	require.NoError(t, err)
	defer db.Close()

	_, ok := db.(*sqlite.Store)
	assert.True(t, ok)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSetupLogging(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	setupLogging(&buf, "warn", "text")
	slog.Info("hidden")
	slog.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=WARN")
}
