package api

import (
	"net/http"
	"strings"

	"github.com/MikeSquared-Agency/faqbase/internal/events"
	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

const faqNotFound = "FAQ not found"

func (s *Server) listFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := s.store.ListFAQs(r.Context(), store.ListOptions{
		Category: r.URL.Query().Get("category"),
		Limit:    queryInt(r, "limit", store.DefaultListLimit),
		Offset:   queryInt(r, "offset", 0),
	})
	if err != nil {
		s.writeStoreError(w, r, err, faqNotFound)
		return
	}
	writeJSON(w, http.StatusOK, faqs)
}

func (s *Server) searchFAQs(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, []store.FAQ{})
		return
	}

	ctx := r.Context()
	faqs, err := s.store.SearchFAQs(ctx, q, store.DefaultSearchLimit)
	if err != nil {
		s.writeStoreError(w, r, err, faqNotFound)
		return
	}

	if err := s.store.LogSearch(ctx, q, len(faqs) > 0); err != nil {
		s.logger.Warn("log search", "query", q, "error", err)
	}
	if len(faqs) == 0 {
		events.Emit(s.logger, s.events, events.SubjectSearchMissed, events.SearchMissedEvent{Query: q})
	} else {
		ids := make([]int64, len(faqs))
		for i, f := range faqs {
			ids[i] = f.ID
		}
		if err := s.store.IncrementViews(ctx, ids...); err != nil {
			s.logger.Warn("increment views", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, faqs)
}

func (s *Server) getFAQ(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	faq, err := s.store.GetFAQ(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err, faqNotFound)
		return
	}
	if err := s.store.IncrementViews(r.Context(), id); err != nil {
		s.logger.Warn("increment views", "id", id, "error", err)
	}
	writeJSON(w, http.StatusOK, faq)
}

// decodeFAQInput reads and validates a FAQ body, writing a 400 on failure.
func decodeFAQInput(w http.ResponseWriter, r *http.Request) (store.FAQInput, bool) {
	var in store.FAQInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return in, false
	}
	if strings.TrimSpace(in.Question) == "" || strings.TrimSpace(in.Answer) == "" {
		writeError(w, http.StatusBadRequest, "Question and answer are required")
		return in, false
	}
	return in, true
}

func (s *Server) createFAQ(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeFAQInput(w, r)
	if !ok {
		return
	}
	faq, err := s.store.CreateFAQ(r.Context(), in)
	if err != nil {
		s.writeStoreError(w, r, err, faqNotFound)
		return
	}
	s.audit(r, "faq created", "id", faq.ID)
	events.Emit(s.logger, s.events, events.SubjectFAQCreated, faqEvent(faq))
	writeJSON(w, http.StatusCreated, faq)
}

func (s *Server) updateFAQ(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := decodeFAQInput(w, r)
	if !ok {
		return
	}
	faq, err := s.store.UpdateFAQ(r.Context(), id, in)
	if err != nil {
		s.writeStoreError(w, r, err, faqNotFound)
		return
	}
	s.audit(r, "faq updated", "id", faq.ID)
	events.Emit(s.logger, s.events, events.SubjectFAQUpdated, faqEvent(faq))
	writeJSON(w, http.StatusOK, faq)
}

func (s *Server) deleteFAQ(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteFAQ(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, faqNotFound)
		return
	}
	s.audit(r, "faq deleted", "id", id)
	events.Emit(s.logger, s.events, events.SubjectFAQDeleted, events.FAQEvent{ID: id})
	writeJSON(w, http.StatusOK, map[string]string{"message": "FAQ deleted successfully"})
}

func (s *Server) markHelpful(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.MarkHelpful(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, faqNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Helpful count updated"})
}

type bulkPair struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Category string        `json:"category"`
	Tags     store.TagList `json:"tags"`
}

type bulkRequest struct {
	Pairs    []bulkPair `json:"pairs"`
	Category string     `json:"category"`
}

type bulkResponse struct {
	Success      bool               `json:"success"`
	Total        int                `json:"total"`
	SuccessCount int                `json:"successCount"`
	ErrorCount   int                `json:"errorCount"`
	Results      []store.BulkResult `json:"results"`
}

// bulkCreateFAQs inserts reviewed pairs. Pairs with an empty side are
// reported as failures without reaching the store; the request category,
// when set, overrides each pair's own.
func (s *Server) bulkCreateFAQs(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Pairs) == 0 {
		writeError(w, http.StatusBadRequest, "質問と回答のペアが必要です")
		return
	}

	results := make([]store.BulkResult, len(req.Pairs))
	var (
		inputs  []store.FAQInput
		indexes []int
	)
	for i, p := range req.Pairs {
		q, a := strings.TrimSpace(p.Question), strings.TrimSpace(p.Answer)
		if q == "" || a == "" {
			results[i] = store.BulkResult{Index: i, Error: "質問または回答が空です"}
			continue
		}
		category := req.Category
		if category == "" {
			category = p.Category
		}
		inputs = append(inputs, store.FAQInput{Question: q, Answer: a, Category: category, Tags: p.Tags})
		indexes = append(indexes, i)
	}

	if len(inputs) > 0 {
		stored, err := s.store.BulkCreateFAQs(r.Context(), inputs)
		if err != nil {
			s.writeStoreError(w, r, err, faqNotFound)
			return
		}
		for j, res := range stored {
			res.Index = indexes[j]
			results[indexes[j]] = res
		}
	}

	resp := bulkResponse{Success: true, Total: len(req.Pairs), Results: results}
	for _, res := range results {
		if res.Success {
			resp.SuccessCount++
		} else {
			resp.ErrorCount++
		}
	}

	s.audit(r, "faqs bulk created", "total", resp.Total, "success", resp.SuccessCount, "errors", resp.ErrorCount)
	if resp.SuccessCount > 0 {
		events.Emit(s.logger, s.events, events.SubjectFAQBulkCreated, events.BulkCreatedEvent{
			Source:       "api",
			Category:     req.Category,
			Total:        resp.Total,
			SuccessCount: resp.SuccessCount,
			ErrorCount:   resp.ErrorCount,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.Categories(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func faqEvent(f *store.FAQ) events.FAQEvent {
	ev := events.FAQEvent{ID: f.ID, Question: f.Question}
	if f.Category != nil {
		ev.Category = *f.Category
	}
	return ev
}
