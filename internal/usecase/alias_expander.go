package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nutrikatori/backend/internal/domain"
)

const (
	aliasCacheKeyPrefix    = "aliases:"
	defaultAliasCacheTTL   = 720 * time.Hour
	defaultAliasConcurrent = 8
)

// AliasExpanderConfig holds configuration for the alias expander
type AliasExpanderConfig struct {
	CacheTTL       time.Duration
	MaxConcurrency int
	Logger         *zap.Logger
	Recorder       Recorder
}

// AliasExpander widens an ingredient name into a candidate set using an
// external alias source. Source failures never reach the caller.
type AliasExpander struct {
	source         domain.AliasSource
	cache          domain.CacheRepository
	cacheTTL       time.Duration
	maxConcurrency int
	logger         *zap.Logger
	recorder       Recorder
}

// NewAliasExpander creates an expander. source and cache may be nil: without
// a source every name expands to itself, without a cache every lookup goes
// to the source.
func NewAliasExpander(
	source domain.AliasSource,
	cache domain.CacheRepository,
	config AliasExpanderConfig,
) *AliasExpander {
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultAliasCacheTTL
	}

	maxConcurrency := config.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultAliasConcurrent
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	recorder := config.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &AliasExpander{
		source:         source,
		cache:          cache,
		cacheTTL:       cacheTTL,
		maxConcurrency: maxConcurrency,
		logger:         logger,
		recorder:       recorder,
	}
}

// Expand returns the normalized name followed by its aliases, deduplicated by
// normalized form, in first-seen order. The result always contains the name
// itself unless the name normalizes to "".
func (e *AliasExpander) Expand(ctx context.Context, name string) []string {
	normalized := Normalize(name)
	if normalized == "" {
		return nil
	}

	aliases, result := e.lookup(ctx, normalized)
	e.recorder.RecordAliasLookup(result)

	return dedupeNormalized(append([]string{normalized}, aliases...))
}

// ExpandAll expands every name concurrently, bounded by MaxConcurrency, and
// waits for all of them. Result i belongs to names[i]. A failing or slow
// lookup for one name has no effect on the others.
func (e *AliasExpander) ExpandAll(ctx context.Context, names []string) [][]string {
	results := make([][]string, len(names))

	var g errgroup.Group
	g.SetLimit(e.maxConcurrency)

	for i, name := range names {
		g.Go(func() error {
			results[i] = e.Expand(ctx, name)
			return nil
		})
	}

	// Tasks never return an error; failures are folded into fallbacks.
	_ = g.Wait()

	return results
}

// lookup returns the aliases for an already normalized name and the lookup
// outcome for metrics.
func (e *AliasExpander) lookup(ctx context.Context, name string) ([]string, string) {
	cacheKey := aliasCacheKeyPrefix + name

	if cached, ok := e.getFromCache(ctx, cacheKey); ok {
		return cached, AliasResultCacheHit
	}

	if e.source == nil {
		return nil, AliasResultFallback
	}

	aliases, err := e.fetch(ctx, name)
	if err != nil {
		e.logger.Warn("alias lookup failed, using literal name",
			zap.String("ingredient", name),
			zap.Error(err),
		)
		return nil, AliasResultFallback
	}

	aliases = dedupeNormalized(aliases)
	e.setCache(ctx, cacheKey, aliases)

	return aliases, AliasResultOK
}

// fetch calls the source, converting a panic into an error.
func (e *AliasExpander) fetch(ctx context.Context, name string) (aliases []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("alias source panicked: %v", r)
		}
	}()
	return e.source.GetAliases(ctx, name)
}

func (e *AliasExpander) getFromCache(ctx context.Context, key string) ([]string, bool) {
	if e.cache == nil {
		return nil, false
	}

	value, err := e.cache.Get(ctx, key)
	if err != nil || value == nil {
		return nil, false
	}

	switch v := value.(type) {
	case []string:
		return v, true
	case []interface{}:
		aliases := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				aliases = append(aliases, s)
			}
		}
		return aliases, true
	default:
		return nil, false
	}
}

func (e *AliasExpander) setCache(ctx context.Context, key string, aliases []string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, key, aliases, e.cacheTTL); err != nil {
		e.logger.Debug("failed to cache aliases", zap.String("key", key), zap.Error(err))
	}
}

// dedupeNormalized normalizes every name, drops blanks and keeps the first
// occurrence of each normalized form.
func dedupeNormalized(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		n := Normalize(name)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
