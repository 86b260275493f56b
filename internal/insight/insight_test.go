package insight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sakif/alive-sleep/internal/config"
)

const entriesPayload = `{
  "items": [
    {
      "sys": {"id": "a1"},
      "fields": {
        "title": "Wind Down",
        "slug": "wind-down",
        "author": "Dr. Rest",
        "date": "2025-12-01",
        "readTime": "3 min read",
        "tags": ["Habits"],
        "excerpt": "Slow down before bed.",
        "coverImage": {"sys": {"type": "Link", "linkType": "Asset", "id": "img1"}},
        "bodyContent": {"nodeType": "document", "content": []}
      }
    },
    {
      "sys": {"id": "a2"},
      "fields": {"title": "No Cover", "slug": "no-cover"}
    }
  ],
  "includes": {
    "Asset": [
      {"sys": {"id": "img1"}, "fields": {"file": {"url": "//images.ctfassets.net/space/img1.jpg"}}}
    ]
  }
}`

func newContentfulServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spaces/space-1/environments/master/entries", r.URL.Path)
		assert.Equal(t, "articles", r.URL.Query().Get("content_type"))
		assert.Equal(t, "-fields.date", r.URL.Query().Get("order"))
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/vnd.contentful.delivery.v1+json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *ContentfulClient {
	return NewContentfulClient(config.ContentfulConfig{
		SpaceID:     "space-1",
		AccessToken: "token-1",
		BaseURL:     srv.URL,
		Environment: "master",
	})
}

func TestContentfulClient_MapsArticles(t *testing.T) {
	srv := newContentfulServer(t, http.StatusOK, entriesPayload)

	got, err := newClient(srv).Articles(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "a1", first.ID)
	assert.Equal(t, "wind-down", first.Slug)
	assert.Equal(t, []string{"Habits"}, first.Tags)
	require.NotNil(t, first.Image)
	assert.Equal(t, "https://images.ctfassets.net/space/img1.jpg", *first.Image)
	assert.JSONEq(t, `{"nodeType":"document","content":[]}`, string(first.Body))

	assert.Nil(t, got[1].Image)
}

func TestContentfulClient_ErrorStatus(t *testing.T) {
	srv := newContentfulServer(t, http.StatusUnauthorized, `{"message":"bad token"}`)

	_, err := newClient(srv).Articles(context.Background())
	assert.Error(t, err)
}

type stubSource struct {
	articles []Article
	err      error
}

func (s stubSource) Articles(context.Context) ([]Article, error) { return s.articles, s.err }

func TestService_Fallbacks(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tests := []struct {
		name   string
		source Source
	}{
		{"not configured", nil},
		{"cms error", stubSource{err: errors.New("timeout")}},
		{"nothing published", stubSource{articles: []Article{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewService(tt.source, logger).List(context.Background())
			require.Len(t, got, 8)
			assert.Equal(t, "fallback-1", got[0].ID)
		})
	}
}

func TestService_UsesCMSArticles(t *testing.T) {
	srv := newContentfulServer(t, http.StatusOK, entriesPayload)
	svc := NewService(newClient(srv), zaptest.NewLogger(t))

	list := svc.List(context.Background())
	require.Len(t, list, 2)
	assert.Equal(t, "a1", list[0].ID)
}

func TestService_BySlug(t *testing.T) {
	svc := NewService(nil, zaptest.NewLogger(t))

	assert.Equal(t, "fallback-6", svc.BySlug(context.Background(), "caffeine-curfew").ID)
	// Unknown slugs fall back to the first article.
	assert.Equal(t, "fallback-1", svc.BySlug(context.Background(), "no-such-article").ID)
}
