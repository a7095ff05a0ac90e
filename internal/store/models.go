package store

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

type FAQ struct {
	ID           int64     `json:"id" yaml:"id"`
	Question     string    `json:"question" yaml:"question"`
	Answer       string    `json:"answer" yaml:"answer"`
	Category     *string   `json:"category" yaml:"category,omitempty"`
	Tags         string    `json:"tags" yaml:"tags,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
	ViewCount    int       `json:"view_count" yaml:"view_count"`
	HelpfulCount int       `json:"helpful_count" yaml:"helpful_count"`
	Rank         float64   `json:"rank,omitempty" yaml:"-"`
}

// FAQInput carries the writable fields of a FAQ.
type FAQInput struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Category string  `json:"category"`
	Tags     TagList `json:"tags"`
}

// BulkResult reports the outcome of one item of a bulk insert.
type BulkResult struct {
	Index    int    `json:"index"`
	Success  bool   `json:"success"`
	ID       int64  `json:"id,omitempty"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Document struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Category       *string   `json:"category,omitempty"`
	Tags           *string   `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ContentSnippet string    `json:"content_snippet,omitempty"`
}

type DocumentInput struct {
	Title    string
	Content  string
	Category string
	Tags     string
}

type SearchLog struct {
	ID        int64     `json:"id"`
	Query     string    `json:"query"`
	Found     bool      `json:"found"`
	CreatedAt time.Time `json:"created_at"`
}

type Stats struct {
	TotalFAQs     int     `json:"totalFaqs"`
	TotalSearches int     `json:"totalSearches"`
	FoundSearches int     `json:"foundSearches"`
	SuccessRate   float64 `json:"successRate"`
}

// ListOptions pages through FAQs, newest first.
type ListOptions struct {
	Category string
	Limit    int
	Offset   int
}

// TagList is stored comma-joined. It decodes from either a JSON string or
// an array of strings.
type TagList string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TagList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("tags must be a string or an array of strings")
	}
	*t = TagList(strings.Join(list, ","))
	return nil
}

// SuccessRate returns found/total as a percentage rounded to two places.
func SuccessRate(found, total int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(found) / float64(total) * 100
	return float64(int64(rate*100+0.5)) / 100
}

// NullIfEmpty maps "" to a NULL column value.
func NullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NormalizeQuestion folds whitespace so that re-imported questions compare
// equal.
func NormalizeQuestion(q string) string {
	return strings.Join(strings.Fields(q), " ")
}
