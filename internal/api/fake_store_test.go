package api

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

// memStore is an in-memory store.Store for handler tests.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	faqs    map[int64]*store.FAQ
	docs    map[int64]*store.Document
	logs    []store.SearchLog
	hash    string
	failAll error
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{faqs: map[int64]*store.FAQ{}, docs: map[int64]*store.Document{}}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) sortedFAQs() []store.FAQ {
	out := make([]store.FAQ, 0, len(m.faqs))
	for _, f := range m.faqs {
		out = append(out, *f)
	}
	slices.SortFunc(out, func(a, b store.FAQ) int { return int(b.ID - a.ID) })
	return out
}

func (m *memStore) ListFAQs(_ context.Context, opts store.ListOptions) ([]store.FAQ, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	out := []store.FAQ{}
	for _, f := range m.sortedFAQs() {
		if opts.Category != "" && (f.Category == nil || *f.Category != opts.Category) {
			continue
		}
		out = append(out, f)
	}
	if opts.Offset >= len(out) {
		return []store.FAQ{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memStore) SearchFAQs(_ context.Context, query string, limit int) ([]store.FAQ, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.FAQ{}
	for _, f := range m.sortedFAQs() {
		if strings.Contains(f.Question, query) || strings.Contains(f.Answer, query) {
			out = append(out, f)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetFAQ(_ context.Context, id int64) (*store.FAQ, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.faqs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *f
	return &c, nil
}

func (m *memStore) CreateFAQ(_ context.Context, in store.FAQInput) (*store.FAQ, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	f := &store.FAQ{
		ID: m.id(), Question: in.Question, Answer: in.Answer,
		Category: store.NullIfEmpty(in.Category), Tags: string(in.Tags),
		CreatedAt: now, UpdatedAt: now,
	}
	m.faqs[f.ID] = f
	c := *f
	return &c, nil
}

func (m *memStore) UpdateFAQ(_ context.Context, id int64, in store.FAQInput) (*store.FAQ, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.faqs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	f.Question, f.Answer = in.Question, in.Answer
	f.Category, f.Tags = store.NullIfEmpty(in.Category), string(in.Tags)
	f.UpdatedAt = time.Now()
	c := *f
	return &c, nil
}

func (m *memStore) DeleteFAQ(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.faqs[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.faqs, id)
	return nil
}

func (m *memStore) IncrementViews(_ context.Context, ids ...int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if f, ok := m.faqs[id]; ok {
			f.ViewCount++
		}
	}
	return nil
}

func (m *memStore) MarkHelpful(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.faqs[id]
	if !ok {
		return store.ErrNotFound
	}
	f.HelpfulCount++
	return nil
}

func (m *memStore) BulkCreateFAQs(ctx context.Context, in []store.FAQInput) ([]store.BulkResult, error) {
	results := make([]store.BulkResult, len(in))
	for i, item := range in {
		if strings.Contains(item.Question, "FAIL") {
			results[i] = store.BulkResult{Index: i, Error: "constraint failed"}
			continue
		}
		f, err := m.CreateFAQ(ctx, item)
		if err != nil {
			return nil, err
		}
		results[i] = store.BulkResult{Index: i, Success: true, ID: f.ID, Question: f.Question, Answer: f.Answer}
	}
	return results, nil
}

func (m *memStore) ExistingQuestions(_ context.Context, questions []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := map[string]bool{}
	for _, f := range m.faqs {
		stored[store.NormalizeQuestion(f.Question)] = true
	}
	out := map[string]bool{}
	for _, q := range questions {
		if n := store.NormalizeQuestion(q); stored[n] {
			out[n] = true
		}
	}
	return out, nil
}

func (m *memStore) Categories(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, f := range m.faqs {
		if f.Category != nil && *f.Category != "" && !seen[*f.Category] {
			seen[*f.Category] = true
			out = append(out, *f.Category)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *memStore) LogSearch(_ context.Context, query string, found bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, store.SearchLog{ID: int64(len(m.logs) + 1), Query: query, Found: found, CreatedAt: time.Now()})
	return nil
}

func (m *memStore) SearchLogs(_ context.Context, limit int) ([]store.SearchLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.logs)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Stats(context.Context) (store.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := store.Stats{TotalFAQs: len(m.faqs), TotalSearches: len(m.logs)}
	for _, l := range m.logs {
		if l.Found {
			st.FoundSearches++
		}
	}
	st.SuccessRate = store.SuccessRate(st.FoundSearches, st.TotalSearches)
	return st, nil
}

func (m *memStore) SearchDocuments(_ context.Context, query string, limit int) ([]store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.Document{}
	for _, d := range m.docs {
		if strings.Contains(d.Title, query) || strings.Contains(d.Content, query) {
			c := *d
			c.ContentSnippet = strings.ReplaceAll(d.Content, query, "<mark>"+query+"</mark>")
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListDocuments(_ context.Context, limit, offset int) ([]store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.Document{}
	for _, d := range m.docs {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memStore) CreateDocument(_ context.Context, in store.DocumentInput) (*store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	d := &store.Document{
		ID: m.id(), Title: in.Title, Content: in.Content,
		Category: store.NullIfEmpty(in.Category), Tags: store.NullIfEmpty(in.Tags),
		CreatedAt: now, UpdatedAt: now,
	}
	m.docs[d.ID] = d
	c := *d
	return &c, nil
}

func (m *memStore) DeleteDocument(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memStore) AdminPasswordHash(context.Context) (string, error) {
	if m.hash == "" {
		return "", store.ErrNotFound
	}
	return m.hash, nil
}

func (m *memStore) SetAdminPasswordHash(_ context.Context, hash string) error {
	m.hash = hash
	return nil
}

func (m *memStore) Close() {}

// recorder captures published events.
type recorder struct {
	mu       sync.Mutex
	subjects []string
	payloads []any
}

func (r *recorder) Publish(subject string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
	return nil
}

func (r *recorder) has(subject string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.subjects, subject)
}

var errBoom = errors.New("boom")
