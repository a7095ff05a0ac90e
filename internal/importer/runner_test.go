package importer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/faqbase/internal/events"
	"github.com/MikeSquared-Agency/faqbase/internal/store"
	"github.com/MikeSquared-Agency/faqbase/internal/store/sqlite"
)

const chatA = "10:00\t田中\t返品はできますか？\n" +
	"10:01\tサポート\tはい、30日以内であれば返品できます。\n" +
	"10:02\t佐藤\t送料はいくらですか？\n" +
	"10:03\tサポート\tはい、全国一律500円です。\n"

const chatB = "11:00\t鈴木\t返品はできますか？\n" +
	"11:01\tサポート\tはい、レシートをお持ちください。\n" +
	"11:02\t鈴木\t営業時間は何時までですか？\n" +
	"11:03\tサポート\tはい、平日は18時までです。\n"

const plainC = "ポイントはどうすれば貯まりますか？\n" +
	"お買い物100円ごとに1ポイント貯まります。\n"

type recorder struct {
	mu     sync.Mutex
	events []events.BulkCreatedEvent
}

func (r *recorder) Publish(_ string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data.(events.BulkCreatedEvent))
	return nil
}

type fixture struct {
	dir   string
	state string
	db    *sqlite.Store
	pub   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "chats")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("a.txt", chatA)
	write("sub/b.TXT", chatB)
	write("sub/c.txt", plainC)
	write("notes.md", chatA)

	db, err := sqlite.New(context.Background(), filepath.Join(root, "faq.db"), discard())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return &fixture{dir: dir, state: filepath.Join(root, "state", "import.json"), db: db, pub: &recorder{}}
}

func (f *fixture) runner(cfg Config) *Runner {
	if cfg.Paths == nil {
		cfg.Paths = []string{f.dir}
	}
	cfg.StatePath = f.state
	return NewRunner(cfg, f.db, f.pub, discard())
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func questions(t *testing.T, db store.Store) []string {
	t.Helper()
	faqs, err := db.ListFAQs(context.Background(), store.ListOptions{Limit: 100})
	require.NoError(t, err)
	out := make([]string, len(faqs))
	for i, f := range faqs {
		out[i] = f.Question
	}
	return out
}

func TestDiscoverFiles(t *testing.T) {
	f := newFixture(t)

	files, err := discoverFiles([]string{f.dir, filepath.Join(f.dir, "notes.md"), filepath.Join(f.dir, "a.txt")})
	require.NoError(t, err)

	var names []string
	for _, p := range files {
		rel, err := filepath.Rel(f.dir, p)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a.txt", "notes.md", "sub/b.TXT", "sub/c.txt"}, names)

	_, err = discoverFiles([]string{filepath.Join(f.dir, "missing")})
	assert.Error(t, err)
}

func TestRun_ImportsAndDeduplicates(t *testing.T) {
	f := newFixture(t)

	sum, err := f.runner(Config{Category: "support"}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.FilesFound)
	assert.Equal(t, 3, sum.FilesProcessed)
	assert.Equal(t, 5, sum.PairsExtracted)
	assert.Equal(t, 1, sum.PairsDuplicate, "返品 question repeats across files")
	assert.Equal(t, 4, sum.PairsInserted)
	assert.Zero(t, sum.Errors)

	assert.ElementsMatch(t, []string{
		"返品はできますか？",
		"送料はいくらですか？",
		"営業時間は何時までですか？",
		"ポイントはどうすれば貯まりますか？",
	}, questions(t, f.db))

	cats, err := f.db.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"support"}, cats)

	require.Len(t, f.pub.events, 3)
	assert.Equal(t, "import:a.txt", f.pub.events[0].Source)
	assert.Equal(t, 2, f.pub.events[0].SuccessCount)
}

func TestRun_ResumeSkipsImportedFiles(t *testing.T) {
	f := newFixture(t)

	_, err := f.runner(Config{}).Run(context.Background())
	require.NoError(t, err)

	// A copy of an imported file under a new name is skipped by digest.
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "copy.txt"), []byte(chatA), 0o644))

	sum, err := f.runner(Config{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, sum.FilesFound)
	assert.Equal(t, 4, sum.FilesSkipped)
	assert.Zero(t, sum.PairsInserted)
	assert.Len(t, questions(t, f.db), 4)

	state, err := LoadState(f.state)
	require.NoError(t, err)
	assert.Len(t, state.Files, 3)
}

func TestRun_SkipsQuestionsAlreadyStored(t *testing.T) {
	f := newFixture(t)
	_, err := f.db.CreateFAQ(context.Background(), store.FAQInput{Question: "送料はいくらですか？", Answer: "無料です。"})
	require.NoError(t, err)

	sum, err := f.runner(Config{Paths: []string{filepath.Join(f.dir, "a.txt")}}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.PairsDuplicate)
	assert.Equal(t, 1, sum.PairsInserted)
}

func TestRun_MinConfidence(t *testing.T) {
	f := newFixture(t)

	sum, err := f.runner(Config{MinConfidence: 0.7}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.PairsFiltered, "the plain-text pair scores 0.6")
	assert.NotContains(t, questions(t, f.db), "ポイントはどうすれば貯まりますか？")
}

func TestRun_DryRun(t *testing.T) {
	f := newFixture(t)

	sum, err := f.runner(Config{DryRun: true}).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, sum.DryRun)
	assert.Equal(t, 3, sum.FilesProcessed)
	assert.Zero(t, sum.PairsInserted)
	assert.Empty(t, questions(t, f.db))
	assert.Empty(t, f.pub.events)
	_, err = os.Stat(f.state)
	assert.True(t, os.IsNotExist(err), "dry run must not write state")
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := f.runner(Config{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum.FilesProcessed)

	_, err = os.Stat(f.state)
	assert.NoError(t, err, "state is saved on cancellation")
}

func TestSummaryWrite(t *testing.T) {
	var buf bytes.Buffer
	Summary{FilesFound: 2, PairsInserted: 5, DryRun: true, StatePath: "/tmp/s.json"}.Write(&buf)

	out := buf.String()
	assert.Contains(t, out, "=== Import Summary ===")
	assert.Contains(t, out, "Pairs inserted: 5")
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "/tmp/s.json")
}
