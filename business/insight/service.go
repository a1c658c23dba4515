package insight

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"recoInsight/business/recommend"
	"recoInsight/business/similarity"
	"recoInsight/business/strategy"
	"recoInsight/domain"
	"recoInsight/pkg/logger"
	"recoInsight/pkg/metrics"

	"github.com/google/uuid"
)

const DefaultConfigName = "default"

type Options struct {
	Similarity similarity.Options
	Recommend  recommend.Options
	DefaultK   int
	MaxK       int
	// DirectiveTTL is how long a cached strategy stays valid. Zero disables
	// caching even when a cache is set.
	DirectiveTTL time.Duration
	ConfigName   string
}

func DefaultOptions() Options {
	return Options{
		Similarity:   similarity.DefaultOptions(),
		Recommend:    recommend.DefaultOptions(),
		DefaultK:     3,
		MaxK:         50,
		DirectiveTTL: 15 * time.Minute,
		ConfigName:   DefaultConfigName,
	}
}

// ---- Usecase / Service ----

type Service struct {
	interactionRepo InteractionRepository
	similarityRepo  SimilarityRepository
	strategyRepo    StrategyConfigRepository
	cache           DirectiveCache
	opts            Options

	snapshot atomic.Pointer[Snapshot]
	engine   atomic.Pointer[strategy.Engine]
	// writes counts ingests; a snapshot built before the last ingest is stale.
	writes atomic.Uint64

	rebuildMu sync.Mutex
	configMu  sync.Mutex
	now       func() time.Time
	newID     func() string
}

// NewService wires the service. cache may be nil.
func NewService(
	interactionRepo InteractionRepository,
	similarityRepo SimilarityRepository,
	strategyRepo StrategyConfigRepository,
	cache DirectiveCache,
	engine *strategy.Engine,
	opts Options,
) *Service {
	if opts.ConfigName == "" {
		opts.ConfigName = DefaultConfigName
	}
	s := &Service{
		interactionRepo: interactionRepo,
		similarityRepo:  similarityRepo,
		strategyRepo:    strategyRepo,
		cache:           cache,
		opts:            opts,
		now:             time.Now,
		newID:           uuid.NewString,
	}
	s.engine.Store(engine)
	return s
}

// LoadStrategyConfig replaces the startup engine with the persisted config,
// if one exists.
func (s *Service) LoadStrategyConfig(ctx context.Context) error {
	rec, ok, err := s.strategyRepo.Get(ctx, s.opts.ConfigName)
	if err != nil {
		return fmt.Errorf("load strategy config: %w", err)
	}
	if !ok {
		logger.Info("no persisted strategy config, using environment defaults", "name", s.opts.ConfigName)
		return nil
	}

	cfg, err := strategy.FromRecord(rec)
	if err != nil {
		return fmt.Errorf("load strategy config: %w", err)
	}
	engine, err := strategy.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("load strategy config: %w", err)
	}

	s.engine.Store(engine)
	logger.Info("strategy config loaded", "name", rec.Name, "revision", rec.Revision)
	return nil
}

// Rebuild reads the whole ratings store, computes a new similarity matrix,
// persists it and swaps it in. On error the previous snapshot stays active.
func (s *Service) Rebuild(ctx context.Context) (domain.SnapshotStatus, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	if err := ctx.Err(); err != nil {
		logger.Error("context error when rebuild similarity")
		return domain.SnapshotStatus{}, fmt.Errorf("context error: %w", err)
	}

	start := s.now()
	writes := s.writes.Load()

	interactions, err := s.interactionRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to read interactions", err, "trace_id", TraceIDFromContext(ctx))
		return domain.SnapshotStatus{}, fmt.Errorf("rebuild similarity: %w", err)
	}
	if len(interactions) == 0 {
		logger.Warn("rebuild skipped, ratings store is empty", "trace_id", TraceIDFromContext(ctx))
		return domain.SnapshotStatus{}, fmt.Errorf("rebuild similarity: no interactions: %w", domain.ErrInsufficientData)
	}

	m, err := similarity.Compute(interactions, s.opts.Similarity)
	if err != nil {
		logger.Error("failed to compute similarity", err, "trace_id", TraceIDFromContext(ctx))
		return domain.SnapshotStatus{}, fmt.Errorf("rebuild similarity: %w", err)
	}

	var version uint64 = 1
	if prev := s.snapshot.Load(); prev != nil {
		version = prev.Version + 1
	}
	builtAt := s.now().UTC()

	if err := s.similarityRepo.ReplaceAll(ctx, similarity.Stamp(m, version, builtAt)); err != nil {
		logger.Error("failed to persist similarity entries", err, "version", version)
		return domain.SnapshotStatus{}, fmt.Errorf("rebuild similarity: %w", err)
	}

	snap := newSnapshot(version, s.newID(), builtAt, m, interactions, writes)
	s.snapshot.Store(snap)

	metrics.RebuildDuration.Observe(s.now().Sub(start).Seconds())
	metrics.SnapshotEntries.Set(float64(m.Len()))
	logger.Info("similarity snapshot rebuilt",
		"version", version,
		"items", len(m.Items()),
		"entries", m.Len(),
		"interactions", m.Interactions(),
		"trace_id", TraceIDFromContext(ctx),
	)

	return s.status(snap), nil
}

// Status describes the active snapshot.
func (s *Service) Status() domain.SnapshotStatus {
	return s.status(s.snapshot.Load())
}

func (s *Service) status(snap *Snapshot) domain.SnapshotStatus {
	if snap == nil {
		return domain.SnapshotStatus{Stale: s.writes.Load() > 0}
	}
	return domain.SnapshotStatus{
		Ready:        true,
		Version:      snap.Version,
		BuiltAt:      snap.BuiltAt,
		Items:        len(snap.Matrix.Items()),
		Entries:      snap.Matrix.Len(),
		Interactions: snap.Matrix.Interactions(),
		Stale:        s.writes.Load() != snap.writes,
	}
}

// IngestRatings validates and upserts a batch. The active snapshot is only
// marked stale; call Rebuild to pick the ratings up.
func (s *Service) IngestRatings(ctx context.Context, ratings []domain.Interaction) (int, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when ingest ratings")
		return 0, fmt.Errorf("context error: %w", err)
	}
	if len(ratings) == 0 {
		return 0, domain.NewValidationError("ratings", "must not be empty")
	}

	now := s.now().UTC()
	batch := make([]domain.Interaction, len(ratings))
	for i, r := range ratings {
		if r.RatedAt.IsZero() {
			r.RatedAt = now
		}
		if err := similarity.Validate(r, s.opts.Similarity); err != nil {
			return 0, fmt.Errorf("rating %d: %w", i, err)
		}
		batch[i] = r
	}
	batch = similarity.Dedupe(batch)

	if err := s.interactionRepo.Upsert(ctx, batch); err != nil {
		logger.Error("failed to upsert ratings", err, "trace_id", TraceIDFromContext(ctx))
		return 0, fmt.Errorf("ingest ratings: %w", err)
	}

	s.writes.Add(1)
	metrics.RatingsIngested.Add(float64(len(batch)))
	logger.Debug("ratings ingested", "count", len(batch), "trace_id", TraceIDFromContext(ctx))

	return len(batch), nil
}

func (s *Service) current() (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, domain.ErrSnapshotNotReady
	}
	return snap, nil
}

// resolveK applies the default for an unset k and caps it. Negative values
// are left for the generator to reject.
func (s *Service) resolveK(k int) int {
	if k == 0 {
		k = s.opts.DefaultK
	}
	if s.opts.MaxK > 0 && k > s.opts.MaxK {
		k = s.opts.MaxK
	}
	return k
}

func (s *Service) RecommendItem(ctx context.Context, itemID uint64, k int) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, fmt.Errorf("context error: %w", err)
	}
	snap, err := s.current()
	if err != nil {
		return domain.Recommendation{}, err
	}

	rec, err := recommend.Recommend(itemID, snap.Matrix, snap.Popularity, s.resolveK(k), s.opts.Recommend)
	if err != nil {
		return domain.Recommendation{}, err
	}
	if rec.Fallback {
		metrics.RecommendFallbacks.WithLabelValues("item").Inc()
	}
	return rec, nil
}

func (s *Service) RecommendUser(ctx context.Context, userID uint, k int) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, fmt.Errorf("context error: %w", err)
	}
	snap, err := s.current()
	if err != nil {
		return domain.Recommendation{}, err
	}

	rec, err := recommend.RecommendForUser(userID, snap.History(userID), snap.Matrix, snap.Popularity, s.resolveK(k), s.opts.Recommend)
	if err != nil {
		return domain.Recommendation{}, err
	}
	if rec.Fallback {
		metrics.RecommendFallbacks.WithLabelValues("user").Inc()
	}
	return rec, nil
}

func directiveKey(snap *Snapshot, revision, itemID uint64, k int) string {
	return fmt.Sprintf("directive:v%d:b%s:r%d:item:%d:k%d", snap.Version, snap.BuildID, revision, itemID, k)
}

// StrategyForItem recommends for itemID and derives a directive from the
// result. Results are cached per snapshot build and strategy revision.
func (s *Service) StrategyForItem(ctx context.Context, itemID uint64, k int) (StrategyResult, error) {
	if err := ctx.Err(); err != nil {
		return StrategyResult{}, fmt.Errorf("context error: %w", err)
	}
	snap, err := s.current()
	if err != nil {
		return StrategyResult{}, err
	}
	engine := s.engine.Load()
	k = s.resolveK(k)

	key := directiveKey(snap, engine.Config().Revision, itemID, k)
	if res, ok := s.cached(ctx, engine, key); ok {
		return res, nil
	}

	rec, err := recommend.Recommend(itemID, snap.Matrix, snap.Popularity, k, s.opts.Recommend)
	if err != nil {
		return StrategyResult{}, err
	}
	if rec.Fallback {
		metrics.RecommendFallbacks.WithLabelValues("item").Inc()
	}

	d, err := engine.Derive(rec)
	if err != nil {
		logger.Error("failed to derive strategy", err, "item_id", itemID, "trace_id", TraceIDFromContext(ctx))
		return StrategyResult{}, err
	}
	metrics.DirectivesTotal.WithLabelValues(string(d.Action())).Inc()

	res := StrategyResult{Recommendation: rec, Directive: d}
	s.store(ctx, key, res)
	return res, nil
}

// cached returns a cache hit that still passes the engine's checks.
// Cache failures only cost a recomputation.
func (s *Service) cached(ctx context.Context, engine *strategy.Engine, key string) (StrategyResult, bool) {
	if s.cache == nil || s.opts.DirectiveTTL <= 0 {
		return StrategyResult{}, false
	}

	res, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.DirectiveCache.WithLabelValues("error").Inc()
		logger.Warn("directive cache read failed", err, "key", key)
		return StrategyResult{}, false
	}
	if !ok {
		metrics.DirectiveCache.WithLabelValues("miss").Inc()
		return StrategyResult{}, false
	}
	if err := engine.Check(res.Directive); err != nil {
		metrics.DirectiveCache.WithLabelValues("invalid").Inc()
		logger.Warn("discarding cached directive", err, "key", key)
		return StrategyResult{}, false
	}

	metrics.DirectiveCache.WithLabelValues("hit").Inc()
	return res, true
}

func (s *Service) store(ctx context.Context, key string, res StrategyResult) {
	if s.cache == nil || s.opts.DirectiveTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, res, s.opts.DirectiveTTL); err != nil {
		logger.Warn("directive cache write failed", err, "key", key)
	}
}

// PerformanceMetrics returns the per-item interaction count and average
// rating straight from the store.
func (s *Service) PerformanceMetrics(ctx context.Context) ([]domain.ItemPopularity, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get performance metrics")
		return nil, fmt.Errorf("context error: %w", err)
	}

	rows, err := s.interactionRepo.PopularityRanking(ctx)
	if err != nil {
		logger.Error("failed to aggregate item performance", err)
		return nil, err
	}

	return recommend.NewPopularity(rows).Rows(), nil
}

func (s *Service) StrategyConfig() strategy.Config {
	return s.engine.Load().Config()
}

// UpdateStrategyConfig validates cfg by building an engine from it, persists
// it under the next revision and swaps it in. Invalid configs return
// domain.ErrConfiguration and change nothing.
func (s *Service) UpdateStrategyConfig(ctx context.Context, cfg strategy.Config) (strategy.Config, error) {
	s.configMu.Lock()
	defer s.configMu.Unlock()

	if err := ctx.Err(); err != nil {
		return strategy.Config{}, fmt.Errorf("context error: %w", err)
	}

	cfg.Revision = s.engine.Load().Config().Revision + 1
	engine, err := strategy.NewEngine(cfg)
	if err != nil {
		return strategy.Config{}, err
	}

	if err := s.strategyRepo.Upsert(ctx, cfg.Record(s.opts.ConfigName)); err != nil {
		logger.Error("failed to persist strategy config", err, "revision", cfg.Revision)
		return strategy.Config{}, fmt.Errorf("update strategy config: %w", err)
	}

	s.engine.Store(engine)
	logger.Info("strategy config updated",
		"revision", cfg.Revision,
		"high", cfg.Thresholds.High,
		"medium", cfg.Thresholds.Medium,
		"table", cfg.Table.String(),
	)

	return engine.Config(), nil
}
