package ai

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/lazycommit/lazycommit/internal/pkg/errors"
)

// scriptedProvider returns canned replies in order and records every prompt.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []Prompt
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, prompt Prompt) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := len(p.prompts)
	p.prompts = append(p.prompts, prompt)
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.replies) {
		return p.replies[i], nil
	}
	return "", apperrors.NewModelUnavailableError("scripted", context.DeadlineExceeded)
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

func fastRetry() apperrors.RetryConfig {
	return apperrors.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}
