// Package store defines the persistence contract of faqbase. Backends live
// in the postgres and sqlite subpackages.
package store

import "context"

const (
	DefaultListLimit      = 50
	DefaultSearchLimit    = 20
	DefaultDocSearchLimit = 5
	DefaultLogLimit       = 100
)

// Store is implemented by every backend.
type Store interface {
	ListFAQs(ctx context.Context, opts ListOptions) ([]FAQ, error)
	// SearchFAQs runs a ranked full-text query, falling back to substring
	// matching when the query cannot be used as a full-text expression.
	SearchFAQs(ctx context.Context, query string, limit int) ([]FAQ, error)
	GetFAQ(ctx context.Context, id int64) (*FAQ, error)
	CreateFAQ(ctx context.Context, in FAQInput) (*FAQ, error)
	UpdateFAQ(ctx context.Context, id int64, in FAQInput) (*FAQ, error)
	DeleteFAQ(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, ids ...int64) error
	MarkHelpful(ctx context.Context, id int64) error
	// BulkCreateFAQs inserts each item independently; a failed item does
	// not affect the others.
	BulkCreateFAQs(ctx context.Context, in []FAQInput) ([]BulkResult, error)
	// ExistingQuestions returns the subset of questions that are already
	// stored, comparing and keying both sides by NormalizeQuestion.
	ExistingQuestions(ctx context.Context, questions []string) (map[string]bool, error)
	Categories(ctx context.Context) ([]string, error)

	LogSearch(ctx context.Context, query string, found bool) error
	SearchLogs(ctx context.Context, limit int) ([]SearchLog, error)
	Stats(ctx context.Context) (Stats, error)

	SearchDocuments(ctx context.Context, query string, limit int) ([]Document, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]Document, error)
	CreateDocument(ctx context.Context, in DocumentInput) (*Document, error)
	DeleteDocument(ctx context.Context, id int64) error

	// AdminPasswordHash returns ErrNotFound until a hash has been set.
	AdminPasswordHash(ctx context.Context) (string, error)
	SetAdminPasswordHash(ctx context.Context, hash string) error

	Close()
}
