package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/MikeSquared-Agency/faqbase/internal/extractor"
	"github.com/MikeSquared-Agency/faqbase/internal/store"
	"github.com/MikeSquared-Agency/faqbase/internal/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "faq.db"), logger)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	for _, in := range []store.FAQInput{
		{Question: "営業時間は？", Answer: "9時から18時です。", Category: "店舗", Tags: "hours, store"},
		{Question: "駐車場はありますか？", Answer: "はい、10台分あります。", Category: "店舗"},
		{Question: "How do I reset my password?", Answer: "Use <Forgot password>.", Tags: "account"},
	} {
		_, err := s.CreateFAQ(context.Background(), in)
		require.NoError(t, err)
	}
	return s
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"YML", FormatYAML, false},
		{"json", FormatJSON, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestWrite_JSON(t *testing.T) {
	s := newStore(t)
	var buf bytes.Buffer

	n, err := Write(context.Background(), s, &buf, FormatJSON, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Contains(t, buf.String(), "<Forgot password>", "HTML is not escaped")

	var entries []Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 3)

	byQuestion := map[string]Entry{}
	for _, e := range entries {
		byQuestion[e.Question] = e
	}
	hours := byQuestion["営業時間は？"]
	assert.Equal(t, "店舗", hours.Category)
	assert.Equal(t, []string{"hours", "store"}, hours.Tags)
	assert.NotZero(t, hours.ID)
	assert.False(t, hours.CreatedAt.IsZero())

	assert.Equal(t, []string{}, byQuestion["駐車場はありますか？"].Tags)
	assert.Empty(t, byQuestion["How do I reset my password?"].Category)
}

func TestWrite_YAMLCategory(t *testing.T) {
	s := newStore(t)
	var buf bytes.Buffer

	n, err := Write(context.Background(), s, &buf, FormatYAML, "店舗")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var entries []Entry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "店舗", e.Category)
	}
	assert.Contains(t, buf.String(), "view_count: 0")
}

func TestWrite_Empty(t *testing.T) {
	s := newStore(t)
	var buf bytes.Buffer

	n, err := Write(context.Background(), s, &buf, FormatJSON, "none")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "[]\n", buf.String())
}

func TestEncode_Pairs(t *testing.T) {
	pairs := []extractor.QAPair{{Question: "q?", Answer: "answer text", Confidence: 0.8}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, pairs))
	assert.Contains(t, buf.String(), "question: q?")
	assert.Contains(t, buf.String(), "confidence: 0.8")

	assert.Error(t, Encode(&buf, Format("xml"), pairs))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{}, splitTags(""))
	assert.Equal(t, []string{"a", "b"}, splitTags(" a ,, b ,"))
}
