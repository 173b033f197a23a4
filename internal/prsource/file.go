package prsource

import (
	"context"
	"fmt"
	"os"

	"github.com/roivaz/repo-insights/internal/pullrequest"
)

// FileSource reads a JSON array previously saved from `gh pr list --json`.
type FileSource struct {
	Path string
}

func (s *FileSource) Fetch(_ context.Context) ([]pullrequest.Record, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("input file is required for source %q", KindFile)
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	records, err := pullrequest.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return records, nil
}
