package pullrequest

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

var ErrInvalidJSON = errors.New("invalid pull request JSON")

// Decode parses the JSON array printed by `gh pr list --json ...`.
func Decode(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrInvalidJSON, root.Type)
	}

	items := root.Array()
	records := make([]Record, 0, len(items))
	for idx, item := range items {
		rec, err := decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("pull request at index %d: %w", idx, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRecord(item gjson.Result) (Record, error) {
	if !item.IsObject() {
		return Record{}, fmt.Errorf("%w: expected object", ErrInvalidJSON)
	}
	for _, field := range []string{"number", "title", "createdAt", "additions", "deletions", "comments", "reviews", "reviewRequests", "author.login"} {
		if !item.Get(field).Exists() {
			return Record{}, fmt.Errorf("missing field %q", field)
		}
	}
	for _, field := range []string{"number", "additions", "deletions"} {
		if t := item.Get(field).Type; t != gjson.Number {
			return Record{}, fmt.Errorf("field %q: expected number, got %s", field, t)
		}
	}
	for _, field := range []string{"title", "author.login"} {
		if t := item.Get(field).Type; t != gjson.String {
			return Record{}, fmt.Errorf("field %q: expected string, got %s", field, t)
		}
	}

	rec := Record{
		Number:    int(item.Get("number").Int()),
		Title:     item.Get("title").String(),
		Additions: int(item.Get("additions").Int()),
		Deletions: int(item.Get("deletions").Int()),
		Author: Actor{
			Login: item.Get("author.login").String(),
			Name:  item.Get("author.name").String(),
			IsBot: item.Get("author.is_bot").Bool(),
		},
	}

	created, err := parseTime(item.Get("createdAt"))
	if err != nil {
		return Record{}, fmt.Errorf("#%d createdAt: %w", rec.Number, err)
	}
	if created == nil {
		return Record{}, fmt.Errorf("#%d createdAt: empty timestamp", rec.Number)
	}
	rec.CreatedAt = *created

	if updated, err := parseTime(item.Get("updatedAt")); err != nil {
		return Record{}, fmt.Errorf("#%d updatedAt: %w", rec.Number, err)
	} else if updated != nil {
		rec.UpdatedAt = *updated
	}
	if rec.MergedAt, err = parseTime(item.Get("mergedAt")); err != nil {
		return Record{}, fmt.Errorf("#%d mergedAt: %w", rec.Number, err)
	}
	if rec.ClosedAt, err = parseTime(item.Get("closedAt")); err != nil {
		return Record{}, fmt.Errorf("#%d closedAt: %w", rec.Number, err)
	}

	if rec.Comments, err = decodeComments(item.Get("comments")); err != nil {
		return Record{}, fmt.Errorf("#%d comments: %w", rec.Number, err)
	}
	if rec.Reviews, err = decodeReviews(item.Get("reviews")); err != nil {
		return Record{}, fmt.Errorf("#%d reviews: %w", rec.Number, err)
	}
	if rec.ReviewRequests, err = decodeReviewRequests(item.Get("reviewRequests")); err != nil {
		return Record{}, fmt.Errorf("#%d reviewRequests: %w", rec.Number, err)
	}
	return rec, nil
}

func decodeComments(list gjson.Result) ([]Comment, error) {
	if !list.IsArray() {
		return nil, errors.New("expected array")
	}
	var out []Comment
	var decodeErr error
	list.ForEach(func(_, value gjson.Result) bool {
		created, err := parseTime(value.Get("createdAt"))
		if err != nil {
			decodeErr = err
			return false
		}
		c := Comment{Author: value.Get("author.login").String()}
		if created != nil {
			c.CreatedAt = *created
		}
		out = append(out, c)
		return true
	})
	return out, decodeErr
}

func decodeReviews(list gjson.Result) ([]Review, error) {
	if !list.IsArray() {
		return nil, errors.New("expected array")
	}
	var out []Review
	var decodeErr error
	list.ForEach(func(_, value gjson.Result) bool {
		submitted, err := parseTime(value.Get("submittedAt"))
		if err != nil {
			decodeErr = err
			return false
		}
		r := Review{
			Author: value.Get("author.login").String(),
			State:  value.Get("state").String(),
		}
		if submitted != nil {
			r.SubmittedAt = *submitted
		}
		out = append(out, r)
		return true
	})
	return out, decodeErr
}

func decodeReviewRequests(list gjson.Result) ([]ReviewRequest, error) {
	if !list.IsArray() {
		return nil, errors.New("expected array")
	}
	var out []ReviewRequest
	list.ForEach(func(_, value gjson.Result) bool {
		req := ReviewRequest{Kind: value.Get("__typename").String()}
		switch {
		case value.Get("login").Exists():
			req.Name = value.Get("login").String()
		case value.Get("slug").Exists():
			req.Name = value.Get("slug").String()
		default:
			req.Name = value.Get("name").String()
		}
		if req.Kind == "" {
			req.Kind = "User"
		}
		out = append(out, req)
		return true
	})
	return out, nil
}

// parseTime returns nil for null, empty and zero timestamps.
func parseTime(v gjson.Result) (*time.Time, error) {
	if !v.Exists() || v.Type == gjson.Null || v.String() == "" {
		return nil, nil
	}
	if v.Type != gjson.String {
		return nil, fmt.Errorf("expected RFC3339 string, got %s", v.Type)
	}
	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return nil, err
	}
	if t.IsZero() {
		return nil, nil
	}
	return &t, nil
}
