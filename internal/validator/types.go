package validator

import (
	"context"

	"github.com/hetulpatel/crossarb/internal/cache"
)

// Result represents the structured LLM verdict.
type Result struct {
	ValidResolution  bool   `json:"ValidResolution"`
	ResolutionReason string `json:"ResolutionReason"`
}

// Completer is the single-shot chat call the validator needs. *llm.Client
// implements it.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config controls the validator behavior.
type Config struct {
	LLMClient    Completer
	Cache        cache.VerdictCache
	SystemPrompt string
}
