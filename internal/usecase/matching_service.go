package usecase

import (
	"strings"

	"go.uber.org/zap"

	"github.com/nutrikatori/backend/internal/domain"
)

// defaultSimilarityThreshold is the score a similarity match must exceed.
const defaultSimilarityThreshold = 0.75

// MatchStrategy is one phase of the matcher. Resolve returns the index of the
// accepted record in records and its confidence, or ok=false.
type MatchStrategy interface {
	Phase() domain.MatchPhase
	Resolve(candidate string, records []domain.FoodRecord) (index int, confidence float64, ok bool)
}

// ExactPhase accepts the first record, in table order, whose name contains
// the candidate.
type ExactPhase struct{}

// Phase implements MatchStrategy
func (ExactPhase) Phase() domain.MatchPhase { return domain.PhaseExact }

// Resolve implements MatchStrategy
func (ExactPhase) Resolve(candidate string, records []domain.FoodRecord) (int, float64, bool) {
	for i := range records {
		if strings.Contains(records[i].Name, candidate) {
			return i, 1.0, true
		}
	}
	return -1, 0, false
}

// SimilarityPhase scores the candidate against every record and accepts the
// best one only when its score is strictly greater than Threshold. Ties keep
// the earliest record.
type SimilarityPhase struct {
	Scorer    SimilarityScorer
	Threshold float64
}

// Phase implements MatchStrategy
func (SimilarityPhase) Phase() domain.MatchPhase { return domain.PhaseSimilarity }

// Resolve implements MatchStrategy
func (p SimilarityPhase) Resolve(candidate string, records []domain.FoodRecord) (int, float64, bool) {
	best := -1
	bestScore := -1.0
	for i := range records {
		score := p.Scorer.Score(candidate, records[i].Name)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 || bestScore <= p.Threshold {
		return -1, 0, false
	}
	return best, bestScore, true
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	SimilarityThreshold float64
	Scorer              SimilarityScorer
	Logger              *zap.Logger
}

// MatchingService resolves ingredient names to food-composition records.
type MatchingService struct {
	phases []MatchStrategy
	logger *zap.Logger
}

// NewMatchingService creates a matcher running the exact-containment phase
// and then the similarity phase for every candidate.
func NewMatchingService(config MatchConfig) *MatchingService {
	threshold := config.SimilarityThreshold
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}

	scorer := config.Scorer
	if scorer == nil {
		scorer = DiceScorer{}
	}

	return NewMatchingServiceWithPhases(config.Logger,
		ExactPhase{},
		SimilarityPhase{Scorer: scorer, Threshold: threshold},
	)
}

// NewMatchingServiceWithPhases creates a matcher from explicit phases, tried
// in order for each candidate.
func NewMatchingServiceWithPhases(logger *zap.Logger, phases ...MatchStrategy) *MatchingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchingService{phases: phases, logger: logger}
}

// Match resolves a candidate set against the table. Candidates are tried in
// the given order; for each one every phase runs before the next candidate
// is considered, and the first accepted record wins. Blank candidates are
// skipped. An empty table or no acceptable candidate yields an unmatched
// result with confidence 0.
func (s *MatchingService) Match(candidates []string, records []domain.FoodRecord) domain.MatchResult {
	if len(records) == 0 {
		return domain.MatchResult{Phase: domain.PhaseNone}
	}

	for _, raw := range candidates {
		candidate := Normalize(raw)
		if candidate == "" {
			continue
		}

		for _, phase := range s.phases {
			index, confidence, ok := phase.Resolve(candidate, records)
			if !ok {
				continue
			}

			record := records[index]
			s.logger.Debug("ingredient matched",
				zap.String("candidate", candidate),
				zap.String("record", record.Name),
				zap.String("phase", string(phase.Phase())),
				zap.Float64("confidence", confidence),
			)
			return domain.MatchResult{
				Record:     &record,
				Confidence: confidence,
				Candidate:  candidate,
				Phase:      phase.Phase(),
			}
		}
	}

	s.logger.Debug("no match for candidates", zap.Strings("candidates", candidates))
	return domain.MatchResult{Phase: domain.PhaseNone}
}
