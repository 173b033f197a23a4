package prsource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roivaz/repo-insights/internal/logging"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *github.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	return client
}

func TestAPISourceFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/widgets/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[{"number": 7}, {"number": 8}]`)
	})
	mux.HandleFunc("/repos/octo/widgets/pulls/7", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"number": 7, "title": "Add cache", "created_at": "2024-03-01T10:00:00Z",
			"updated_at": "2024-03-02T10:00:00Z", "merged_at": "2024-03-02T10:00:00Z", "closed_at": "2024-03-02T10:00:00Z",
			"additions": 40, "deletions": 2, "user": {"login": "alice", "type": "User"},
			"requested_reviewers": [{"login": "bob"}], "requested_teams": [{"slug": "core"}]}`)
	})
	mux.HandleFunc("/repos/octo/widgets/issues/7/comments", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"user": {"login": "bob"}, "created_at": "2024-03-01T12:00:00Z"}]`)
	})
	mux.HandleFunc("/repos/octo/widgets/pulls/7/reviews", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"user": {"login": "bob"}, "state": "APPROVED", "submitted_at": "2024-03-02T09:00:00Z"}]`)
	})

	src := &APISource{
		Client: newTestClient(t, mux),
		Repo:   RepoRef{Owner: "octo", Name: "widgets"},
		Limit:  1,
		Retry:  fastRetry(1),
		Log:    logging.Discard(),
	}
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 7, rec.Number)
	assert.Equal(t, "Add cache", rec.Title)
	assert.Equal(t, 42, rec.Changes())
	assert.Equal(t, "alice", rec.Author.Login)
	require.NotNil(t, rec.MergedAt)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), rec.MergedAt.UTC())
	assert.InDelta(t, 24.0, rec.ReviewDuration(time.Now()), 1e-9)
	assert.Equal(t, 1, rec.CommentCount())
	assert.Equal(t, 1, rec.ReviewCount())
	assert.Equal(t, 2, rec.ReviewRequestCount())
	assert.Equal(t, "Team", rec.ReviewRequests[1].Kind)
}

func TestAPISourceRequiresRepo(t *testing.T) {
	_, err := (&APISource{Log: logging.Discard()}).Fetch(context.Background())
	require.Error(t, err)
}

func TestAPISourceDoesNotRetryNotFound(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/missing/pulls", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	src := &APISource{
		Client: newTestClient(t, mux),
		Repo:   RepoRef{Owner: "octo", Name: "missing"},
		Retry:  fastRetry(3),
		Log:    logging.Discard(),
	}
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestAPISourceRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/widgets/pulls", func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[]`)
	})

	src := &APISource{
		Client: newTestClient(t, mux),
		Repo:   RepoRef{Owner: "octo", Name: "widgets"},
		Retry:  fastRetry(3),
		Log:    logging.Discard(),
	}
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.EqualValues(t, 2, hits.Load())
}
