// Package export writes stored FAQs, or any extracted value, as YAML or
// JSON.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts yaml, yml and json, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q (want yaml or json)", s)
}

// Entry is one exported FAQ.
type Entry struct {
	ID           int64     `json:"id" yaml:"id"`
	Question     string    `json:"question" yaml:"question"`
	Answer       string    `json:"answer" yaml:"answer"`
	Category     string    `json:"category,omitempty" yaml:"category,omitempty"`
	Tags         []string  `json:"tags" yaml:"tags"`
	ViewCount    int       `json:"view_count" yaml:"view_count"`
	HelpfulCount int       `json:"helpful_count" yaml:"helpful_count"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// pageSize bounds each ListFAQs call while collecting entries.
const pageSize = 500

// Entries collects every FAQ, optionally restricted to one category, newest
// first.
func Entries(ctx context.Context, st store.Store, category string) ([]Entry, error) {
	entries := []Entry{}
	for offset := 0; ; offset += pageSize {
		faqs, err := st.ListFAQs(ctx, store.ListOptions{Category: category, Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("querying for export: %w", err)
		}
		for _, f := range faqs {
			entries = append(entries, toEntry(f))
		}
		if len(faqs) < pageSize {
			return entries, nil
		}
	}
}

func toEntry(f store.FAQ) Entry {
	e := Entry{
		ID:           f.ID,
		Question:     f.Question,
		Answer:       f.Answer,
		Tags:         splitTags(f.Tags),
		ViewCount:    f.ViewCount,
		HelpfulCount: f.HelpfulCount,
		CreatedAt:    f.CreatedAt.UTC(),
		UpdatedAt:    f.UpdatedAt.UTC(),
	}
	if f.Category != nil {
		e.Category = *f.Category
	}
	return e
}

func splitTags(s string) []string {
	tags := []string{}
	for t := range strings.SplitSeq(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Write exports the FAQs selected by category to w and returns how many
// were written.
func Write(ctx context.Context, st store.Store, w io.Writer, format Format, category string) (int, error) {
	entries, err := Entries(ctx, st, category)
	if err != nil {
		return 0, err
	}
	if err := Encode(w, format, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Encode writes v to w in format.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
