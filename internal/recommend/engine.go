// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/kmart/internal/cache"
	"github.com/tomtom215/kmart/internal/catalog"
	"github.com/tomtom215/kmart/internal/config"
	"github.com/tomtom215/kmart/internal/embedding"
	"github.com/tomtom215/kmart/internal/interactions"
	"github.com/tomtom215/kmart/internal/metrics"
	"github.com/tomtom215/kmart/internal/recommend/algorithms"
)

// Options configures NewEngine. Catalog and Log are required.
type Options struct {
	Catalog *catalog.Store
	Log     interactions.Log

	// Embedder enables the semantic search strategy. Optional.
	Embedder embedding.Embedder

	// EmbeddingsPath is the embedding table loaded by Warm. Optional.
	EmbeddingsPath string

	Recommend config.RecommendConfig
	Ranking   config.RankingConfig
	Cache     config.CacheConfig

	// Now is the clock used by Trending. Defaults to time.Now.
	Now func() time.Time

	Logger zerolog.Logger
}

// Engine answers the four ranking operations. It is safe for concurrent use.
type Engine struct {
	catalog  *catalog.Store
	log      interactions.Log
	embedder embedding.Embedder
	table    atomic.Pointer[embedding.Table]

	als   *algorithms.ALS
	tfidf *algorithms.TFIDF

	recommendCfg   config.RecommendConfig
	ranking        config.RankingConfig
	embeddingsPath string

	cache *cache.LRU[Result[ScoredProduct]]
	now   func() time.Time

	trainMu  sync.Mutex
	statusMu sync.RWMutex
	status   TrainingStatus

	recommendChain *chain[recommendQuery, ScoredProduct]
	searchChain    *chain[searchQuery, ScoredProduct]
	trendingChain  *chain[trendingQuery, TrendingProduct]
	similarChain   *chain[similarQuery, ScoredProduct]

	logger zerolog.Logger
}

// NewEngine builds an engine. Call Warm before serving to enable the
// text and vector strategies.
//
//nolint:gocritic // Options is passed once at startup
func NewEngine(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, errors.New("recommend: catalog is required")
	}
	if opts.Log == nil {
		return nil, errors.New("recommend: interaction log is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Engine{
		catalog:  opts.Catalog,
		log:      opts.Log,
		embedder: opts.Embedder,
		als: algorithms.NewALS(algorithms.ALSConfig{
			NumFactors:     opts.Recommend.NumFactors,
			NumIterations:  opts.Recommend.NumIterations,
			Regularization: opts.Recommend.Regularization,
			Alpha:          opts.Recommend.Alpha,
			NumWorkers:     opts.Recommend.NumWorkers,
		}),
		tfidf:          algorithms.NewTFIDF(),
		recommendCfg:   opts.Recommend,
		ranking:        opts.Ranking,
		embeddingsPath: opts.EmbeddingsPath,
		now:            opts.Now,
		logger:         opts.Logger.With().Str("component", "recommend").Logger(),
	}
	if opts.Cache.Enabled {
		e.cache = cache.NewLRU[Result[ScoredProduct]](opts.Cache.Capacity, opts.Cache.TTL)
	}

	e.recommendChain = e.newRecommendChain()
	e.searchChain = e.newSearchChain()
	e.trendingChain = e.newTrendingChain()
	e.similarChain = e.newSimilarChain()
	return e, nil
}

// Warm loads the embedding table and builds the TF-IDF index in parallel.
// A missing or mismatched embedding table disables the vector strategies
// and is not an error.
func (e *Engine) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		docs := make([]string, e.catalog.Len())
		for i := range docs {
			p := e.catalog.At(i)
			docs[i] = p.Text()
		}
		if err := e.tfidf.Build(ctx, docs); err != nil {
			return fmt.Errorf("build tfidf index: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if e.embeddingsPath == "" {
			return nil
		}
		table, err := embedding.LoadTable(e.embeddingsPath, e.catalog.Len())
		if err != nil {
			e.logger.Warn().Err(err).Str("path", e.embeddingsPath).
				Msg("Embedding table unavailable, vector strategies disabled")
			return nil
		}
		e.SetEmbeddings(table)
		e.logger.Info().Int("rows", table.Len()).Int("dimensions", table.Dimensions()).
			Msg("Embedding table loaded")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	e.flushCache()
	return nil
}

// SetEmbeddings installs a precomputed table. Nil disables the vector strategies.
func (e *Engine) SetEmbeddings(t *embedding.Table) {
	e.table.Store(t)
	e.flushCache()
}

// Strategies reports which optional strategies are usable right now.
func (e *Engine) Strategies() StrategyState {
	return StrategyState{
		Collaborative: e.als.Ready(),
		Semantic:      e.semanticAvailable(),
		TFIDF:         e.tfidf.Ready(),
		Embedding:     e.table.Load() != nil,
	}
}

// Status returns a snapshot of the training state.
func (e *Engine) Status() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

func (e *Engine) flushCache() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// cached serves op from the LRU or computes and stores it.
func (e *Engine) cached(op, key string, compute func() (Result[ScoredProduct], error)) (Result[ScoredProduct], error) {
	if e.cache == nil {
		return compute()
	}
	key = op + "|" + key
	if r, ok := e.cache.Get(key); ok {
		metrics.RecordCacheLookup(op, true)
		r.Items = append([]ScoredProduct(nil), r.Items...)
		r.Cached = true
		return r, nil
	}
	metrics.RecordCacheLookup(op, false)

	r, err := compute()
	if err != nil {
		return r, err
	}
	e.cache.Add(key, r)
	return r, nil
}

func emptyResult[T any]() Result[T] {
	return Result[T]{Items: []T{}, Strategy: "none"}
}
