package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/roivaz/repo-insights/internal/logging"
)

type fakeModel struct {
	prompt string
	reply  string
	err    error
	wait   bool
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.prompt = messages[0].Parts[0].(llms.TextContent).Text
	if f.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func withCharEstimate(t *testing.T) {
	t.Helper()
	old := estimateTokensFunc
	estimateTokensFunc = func(text string) int { return len(text) / 10 }
	t.Cleanup(func() { estimateTokensFunc = old })
}

func TestBuildPromptFits(t *testing.T) {
	withCharEstimate(t)

	prompt, truncated := BuildPrompt("| 2024-01 | 3 |", 1000)
	assert.False(t, truncated)
	assert.Contains(t, prompt, "| 2024-01 | 3 |")
}

func TestBuildPromptTrimsToBudget(t *testing.T) {
	withCharEstimate(t)

	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("| 2024-01 | 3 | 12.50 |\n")
	}
	budget := 60
	prompt, truncated := BuildPrompt(b.String(), budget)
	assert.True(t, truncated)
	assert.LessOrEqual(t, estimateTokens(prompt), budget)
	assert.Contains(t, prompt, truncationMarker)
	assert.Contains(t, prompt, "| 2024-01 | 3 | 12.50 |")
}

func TestBuildPromptNoBudget(t *testing.T) {
	prompt, truncated := BuildPrompt("stats", 0)
	assert.False(t, truncated)
	assert.Contains(t, prompt, "stats")
}

func TestSummarize(t *testing.T) {
	withCharEstimate(t)
	model := &fakeModel{reply: "  Review latency dropped in March.\n"}
	client := NewWithModel(model, Config{TokenBudget: 1000}, logging.Discard())

	got, err := client.Summarize(context.Background(), "| 2024-03 | 4 |")
	require.NoError(t, err)
	assert.Equal(t, "Review latency dropped in March.", got)
	assert.Contains(t, model.prompt, "| 2024-03 | 4 |")
}

func TestSummarizeErrors(t *testing.T) {
	withCharEstimate(t)

	client := NewWithModel(&fakeModel{err: errors.New("connection refused")}, Config{}, logging.Discard())
	_, err := client.Summarize(context.Background(), "x")
	require.ErrorContains(t, err, "connection refused")

	client = NewWithModel(&fakeModel{wait: true}, Config{CallTimeout: 10 * time.Millisecond}, logging.Discard())
	_, err = client.Summarize(context.Background(), "x")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
}

func TestNewRequiresModel(t *testing.T) {
	_, err := New(Config{}, logging.Discard())
	require.Error(t, err)
}
