// Package importer bulk-loads question/answer pairs extracted from
// transcript files into the store. Runs are resumable: imported files are
// recorded by content digest in a JSON state file.
package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/faqbase/internal/events"
	"github.com/MikeSquared-Agency/faqbase/internal/extractor"
	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

// Config holds the import command configuration.
type Config struct {
	Paths         []string
	Category      string
	MinConfidence float64
	DryRun        bool
	StatePath     string
	Source        string // label for bulk_created events (default: "import")
}

// Summary counts what a run did.
type Summary struct {
	FilesFound     int
	FilesSkipped   int
	FilesProcessed int
	PairsExtracted int
	PairsFiltered  int
	PairsDuplicate int
	PairsInserted  int
	Errors         int
	DryRun         bool
	StatePath      string
}

// Runner orchestrates the import process.
type Runner struct {
	cfg    Config
	store  store.Store
	events events.Publisher
	logger *slog.Logger
}

func NewRunner(cfg Config, s store.Store, pub events.Publisher, logger *slog.Logger) *Runner {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Runner{cfg: cfg, store: s, events: pub, logger: logger}
}

func (r *Runner) sourceLabel() string {
	if r.cfg.Source != "" {
		return r.cfg.Source
	}
	return "import"
}

// Run executes the import. On cancellation the state gathered so far is
// saved before returning ctx.Err().
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{DryRun: r.cfg.DryRun}

	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return sum, fmt.Errorf("load state: %w", err)
	}
	sum.StatePath = state.Path()

	files, err := discoverFiles(r.cfg.Paths)
	if err != nil {
		return sum, fmt.Errorf("discover files: %w", err)
	}
	sum.FilesFound = len(files)
	r.logger.Info("files discovered", "files", len(files))

	// Questions already inserted during this run.
	seen := make(map[string]bool)

	for _, path := range files {
		select {
		case <-ctx.Done():
			r.logger.Info("import interrupted, saving state")
			if !r.cfg.DryRun {
				_ = state.Save()
			}
			return sum, ctx.Err()
		default:
		}

		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("failed to read file", "path", path, "error", err)
			state.AddError(fmt.Sprintf("read %s: %v", path, err))
			sum.Errors++
			continue
		}
		digest := sha256.Sum256(data)
		hexSum := hex.EncodeToString(digest[:])
		if state.IsProcessed(hexSum) {
			r.logger.Debug("skipping imported file", "path", path)
			sum.FilesSkipped++
			continue
		}

		rec, err := r.importFile(ctx, path, string(data), seen, &sum)
		if err != nil {
			r.logger.Warn("failed to import file", "path", path, "error", err)
			state.AddError(fmt.Sprintf("import %s: %v", path, err))
			sum.Errors++
			continue
		}
		sum.FilesProcessed++

		if r.cfg.DryRun {
			continue
		}
		rec.Path = path
		rec.SHA256 = hexSum
		rec.ImportedAt = time.Now().UTC()
		state.MarkProcessed(rec)
		if err := state.Save(); err != nil {
			r.logger.Warn("failed to save state", "error", err)
		}
	}

	r.logger.Info("import complete",
		"files_processed", sum.FilesProcessed,
		"files_skipped", sum.FilesSkipped,
		"pairs_inserted", sum.PairsInserted,
		"dry_run", r.cfg.DryRun,
	)
	return sum, nil
}

// importFile extracts, filters and inserts the pairs of one file.
func (r *Runner) importFile(ctx context.Context, path, text string, seen map[string]bool, sum *Summary) (FileRecord, error) {
	all := extractor.Extract(text)
	pairs := extractor.Filter(all, r.cfg.MinConfidence)
	sum.PairsExtracted += len(all)
	sum.PairsFiltered += len(all) - len(pairs)

	questions := make([]string, len(pairs))
	for i, p := range pairs {
		questions[i] = p.Question
	}
	existing, err := r.store.ExistingQuestions(ctx, questions)
	if err != nil {
		return FileRecord{}, fmt.Errorf("check existing questions: %w", err)
	}

	var inputs []store.FAQInput
	for _, p := range pairs {
		key := store.NormalizeQuestion(p.Question)
		if existing[key] || seen[key] {
			sum.PairsDuplicate++
			continue
		}
		seen[key] = true
		inputs = append(inputs, store.FAQInput{
			Question: p.Question,
			Answer:   p.Answer,
			Category: r.cfg.Category,
		})
	}

	rec := FileRecord{Pairs: len(pairs)}
	r.logger.Info("processing file", "path", path, "pairs", len(pairs), "new", len(inputs))
	if r.cfg.DryRun || len(inputs) == 0 {
		return rec, nil
	}

	results, err := r.store.BulkCreateFAQs(ctx, inputs)
	if err != nil {
		return rec, fmt.Errorf("bulk insert: %w", err)
	}
	failed := 0
	for _, res := range results {
		if res.Success {
			rec.Inserted++
		} else {
			failed++
			r.logger.Warn("insert failed", "path", path, "index", res.Index, "error", res.Error)
		}
	}
	sum.PairsInserted += rec.Inserted
	sum.Errors += failed

	events.Emit(r.logger, r.events, events.SubjectFAQBulkCreated, events.BulkCreatedEvent{
		Source:       r.sourceLabel() + ":" + filepath.Base(path),
		Category:     r.cfg.Category,
		Total:        len(inputs),
		SuccessCount: rec.Inserted,
		ErrorCount:   failed,
	})
	return rec, nil
}

// discoverFiles expands paths: directories are walked for .txt files,
// regular files are taken as given. The result is sorted and unique.
func discoverFiles(paths []string) ([]string, error) {
	set := make(map[string]bool)
	for _, p := range paths {
		p = expandHome(p)
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			set[p] = true
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".txt") {
				set[path] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// Write prints the summary in the form shown at the end of a run.
func (s Summary) Write(w io.Writer) {
	fmt.Fprintf(w, "\n=== Import Summary ===\n")
	fmt.Fprintf(w, "Files found: %d\n", s.FilesFound)
	fmt.Fprintf(w, "Files processed: %d\n", s.FilesProcessed)
	fmt.Fprintf(w, "Files skipped (already imported): %d\n", s.FilesSkipped)
	fmt.Fprintf(w, "Pairs extracted: %d\n", s.PairsExtracted)
	fmt.Fprintf(w, "Pairs below min confidence: %d\n", s.PairsFiltered)
	fmt.Fprintf(w, "Pairs already present: %d\n", s.PairsDuplicate)
	fmt.Fprintf(w, "Pairs inserted: %d\n", s.PairsInserted)
	fmt.Fprintf(w, "Errors: %d\n", s.Errors)
	if s.DryRun {
		fmt.Fprintf(w, "Mode: DRY RUN (no DB writes)\n")
	}
	if s.StatePath != "" {
		fmt.Fprintf(w, "State file: %s\n", s.StatePath)
	}
}
