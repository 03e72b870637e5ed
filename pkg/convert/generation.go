package convert

import "github.com/nikketryhard/a2c/pkg/provider/types"

const (
	defaultTemperature  = 0.4
	defaultTopP         = 1.0
	defaultTopK         = 40
	defaultCandidates   = 1
	maxStopSequences    = 5
)

// buildGenerationConfig assembles sampling parameters. include/budget
// come from resolveThinking, computed before this so the request's own
// thinking intent never needs re-deriving here.
func buildGenerationConfig(req *types.MessagesRequest, includeThinking bool, budget int) *types.GenerationConfig {
	cfg := &types.GenerationConfig{
		CandidateCount:  defaultCandidates,
		MaxOutputTokens: req.MaxTokens,
	}

	temp := defaultTemperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	cfg.Temperature = &temp

	topP := defaultTopP
	if req.TopP != nil {
		topP = *req.TopP
	}
	cfg.TopP = &topP

	topK := defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	cfg.TopK = &topK

	if len(req.StopSequences) > 0 {
		stops := req.StopSequences
		if len(stops) > maxStopSequences {
			stops = stops[:maxStopSequences]
		}
		cfg.StopSequences = stops
	}

	if includeThinking {
		cfg.ThinkingConfig = &types.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  budget,
		}
	}

	return cfg
}
