// Package prstats groups pull-request records into monthly and per-author
// statistics.
package prstats

import (
	"errors"
	"sort"
	"time"

	"github.com/roivaz/repo-insights/internal/pullrequest"
)

var ErrNoPullRequests = errors.New("no pull requests to analyze")

type MonthStats struct {
	Month             string  `json:"month"`
	PRCount           int     `json:"pr_count"`
	AvgReviewHours    float64 `json:"avg_review_hours"`
	AvgComments       float64 `json:"avg_comments"`
	AvgReviews        float64 `json:"avg_reviews"`
	AvgReviewRequests float64 `json:"avg_review_requests"`
	AvgChanges        float64 `json:"avg_changes"`
}

type AuthorStats struct {
	Name           string  `json:"name"`
	PRCount        int     `json:"pr_count"`
	AvgReviewHours float64 `json:"avg_review_hours"`
}

type Analysis struct {
	Total      int           `json:"total"`
	FirstMonth string        `json:"first_month"`
	LastMonth  string        `json:"last_month"`
	Monthly    []MonthStats  `json:"monthly"`
	Authors    []AuthorStats `json:"authors"`
}

type monthAcc struct {
	count    int
	hours    float64
	comments float64
	reviews  float64
	requests float64
	changes  float64
}

type authorAcc struct {
	count int
	hours float64
}

// Analyze aggregates records. Open PRs measure their review window up to now.
func Analyze(records []pullrequest.Record, now time.Time) (Analysis, error) {
	if len(records) == 0 {
		return Analysis{}, ErrNoPullRequests
	}

	months := make(map[string]*monthAcc)
	authors := make(map[string]*authorAcc)
	first, last := records[0].CreatedAt, records[0].CreatedAt

	for _, rec := range records {
		hours := rec.ReviewDuration(now)

		m, ok := months[rec.Month()]
		if !ok {
			m = &monthAcc{}
			months[rec.Month()] = m
		}
		m.count++
		m.hours += hours
		m.comments += float64(rec.CommentCount())
		m.reviews += float64(rec.ReviewCount())
		m.requests += float64(rec.ReviewRequestCount())
		m.changes += float64(rec.Changes())

		a, ok := authors[rec.AuthorName()]
		if !ok {
			a = &authorAcc{}
			authors[rec.AuthorName()] = a
		}
		a.count++
		a.hours += hours

		if rec.CreatedAt.Before(first) {
			first = rec.CreatedAt
		}
		if rec.CreatedAt.After(last) {
			last = rec.CreatedAt
		}
	}

	result := Analysis{
		Total:      len(records),
		FirstMonth: first.Format(pullrequest.MonthLayout),
		LastMonth:  last.Format(pullrequest.MonthLayout),
		Monthly:    make([]MonthStats, 0, len(months)),
		Authors:    make([]AuthorStats, 0, len(authors)),
	}

	for _, key := range sortedKeys(months) {
		m := months[key]
		n := float64(m.count)
		result.Monthly = append(result.Monthly, MonthStats{
			Month:             key,
			PRCount:           m.count,
			AvgReviewHours:    m.hours / n,
			AvgComments:       m.comments / n,
			AvgReviews:        m.reviews / n,
			AvgReviewRequests: m.requests / n,
			AvgChanges:        m.changes / n,
		})
	}
	for _, key := range sortedKeys(authors) {
		a := authors[key]
		result.Authors = append(result.Authors, AuthorStats{
			Name:           key,
			PRCount:        a.count,
			AvgReviewHours: a.hours / float64(a.count),
		})
	}
	return result, nil
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
