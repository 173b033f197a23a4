package pullrequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ghSample = `[
  {
    "additions": 120,
    "author": {"id": "U_1", "is_bot": false, "login": "octocat", "name": "The Octocat"},
    "closedAt": "2024-02-03T10:00:00Z",
    "comments": [
      {"author": {"login": "hubot"}, "body": "lgtm", "createdAt": "2024-02-02T09:00:00Z"}
    ],
    "createdAt": "2024-02-01T10:00:00Z",
    "deletions": 30,
    "mergedAt": "2024-02-03T10:00:00Z",
    "number": 42,
    "reviewRequests": [
      {"__typename": "User", "login": "monalisa"},
      {"__typename": "Team", "name": "Core", "slug": "core"}
    ],
    "reviews": [
      {"author": {"login": "monalisa"}, "state": "APPROVED", "submittedAt": "2024-02-03T09:00:00Z"}
    ],
    "title": "Add widgets",
    "updatedAt": "2024-02-03T10:00:00Z"
  },
  {
    "additions": 1,
    "author": {"login": "dependabot", "is_bot": true},
    "closedAt": null,
    "comments": [],
    "createdAt": "2024-03-05T00:00:00Z",
    "deletions": 1,
    "mergedAt": null,
    "number": 43,
    "reviewRequests": [],
    "reviews": [],
    "title": "Bump deps",
    "updatedAt": "2024-03-05T00:00:00Z"
  }
]`

func TestDecode(t *testing.T) {
	records, err := Decode([]byte(ghSample))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 42, first.Number)
	assert.Equal(t, "Add widgets", first.Title)
	assert.Equal(t, 150, first.Changes())
	assert.Equal(t, "The Octocat", first.AuthorName())
	require.NotNil(t, first.MergedAt)
	require.Len(t, first.Comments, 1)
	assert.Equal(t, "hubot", first.Comments[0].Author)
	require.Len(t, first.Reviews, 1)
	assert.Equal(t, "APPROVED", first.Reviews[0].State)
	require.Len(t, first.ReviewRequests, 2)
	assert.Equal(t, ReviewRequest{Kind: "User", Name: "monalisa"}, first.ReviewRequests[0])
	assert.Equal(t, ReviewRequest{Kind: "Team", Name: "core"}, first.ReviewRequests[1])

	second := records[1]
	assert.Nil(t, second.MergedAt)
	assert.Nil(t, second.ClosedAt)
	assert.True(t, second.Author.IsBot)
	assert.Equal(t, "dependabot", second.AuthorName())
	assert.Equal(t, 0, second.CommentCount())
}

func TestDecodeEmptyArray(t *testing.T) {
	records, err := Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"not json", `{"number":`, "invalid pull request JSON"},
		{"not an array", `{"number": 1}`, "expected array"},
		{"missing author", `[{"number": 1, "title": "x", "createdAt": "2024-01-01T00:00:00Z", "additions": 0, "deletions": 0, "comments": [], "reviews": [], "reviewRequests": []}]`, `missing field "author.login"`},
		{"missing comments", `[{"number": 1, "title": "x", "createdAt": "2024-01-01T00:00:00Z", "additions": 0, "deletions": 0, "reviews": [], "reviewRequests": [], "author": {"login": "a"}}]`, `missing field "comments"`},
		{"bad timestamp", `[{"number": 7, "title": "x", "createdAt": "yesterday", "additions": 0, "deletions": 0, "comments": [], "reviews": [], "reviewRequests": [], "author": {"login": "a"}}]`, "#7 createdAt"},
		{"null additions", `[{"number": 1, "title": "x", "createdAt": "2024-01-01T00:00:00Z", "additions": null, "deletions": 0, "comments": [], "reviews": [], "reviewRequests": [], "author": {"login": "a"}}]`, `field "additions": expected number, got Null`},
		{"string number", `[{"number": "abc", "title": "x", "createdAt": "2024-01-01T00:00:00Z", "additions": 0, "deletions": 0, "comments": [], "reviews": [], "reviewRequests": [], "author": {"login": "a"}}]`, `field "number": expected number, got String`},
		{"numeric title", `[{"number": 1, "title": 42, "createdAt": "2024-01-01T00:00:00Z", "additions": 0, "deletions": 0, "comments": [], "reviews": [], "reviewRequests": [], "author": {"login": "a"}}]`, `field "title": expected string, got Number`},
		{"null author login", `[{"number": 1, "title": "x", "createdAt": "2024-01-01T00:00:00Z", "additions": 0, "deletions": 0, "comments": [], "reviews": [], "reviewRequests": [], "author": {"login": null}}]`, `field "author.login": expected string, got Null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
