package usecase

import "github.com/nutrikatori/backend/internal/domain"

// Alias lookup outcomes reported to a Recorder
const (
	AliasResultOK       = "ok"
	AliasResultFallback = "fallback"
	AliasResultCacheHit = "cache_hit"
)

// Estimate outcomes reported to a Recorder
const (
	EstimateOutcomeOK       = "ok"
	EstimateOutcomeDegraded = "degraded"
	EstimateOutcomeFailed   = "failed"
)

// Recorder receives engine events for metrics.
type Recorder interface {
	RecordMatch(phase domain.MatchPhase)
	RecordAliasLookup(result string)
	RecordEstimate(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordMatch(domain.MatchPhase) {}
func (noopRecorder) RecordAliasLookup(string) {}
func (noopRecorder) RecordEstimate(string) {}
