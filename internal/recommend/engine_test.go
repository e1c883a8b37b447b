// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/catalog"
	"github.com/tomtom215/kmart/internal/config"
	"github.com/tomtom215/kmart/internal/embedding"
	"github.com/tomtom215/kmart/internal/interactions"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func testCatalog() *catalog.Store {
	return catalog.NewStore([]catalog.Product{
		{ID: "p1", Name: "Samsung Galaxy Phone", Description: "Android phone", Price: 500, Rating: 4.5, Category: "electronics"},
		{ID: "p2", Name: "Phone Case", Description: "Silicone case", Price: 10, Rating: 4.0, Category: "electronics"},
		{ID: "p3", Name: "Office Chair", Description: "Ergonomic chair", Price: 120, Rating: 3.5, Category: "furniture"},
		{ID: "p4", Name: "Dining Table", Description: "Oak table", Price: 300, Rating: 4.8, Category: "furniture"},
		{ID: "p5", Name: "USB Cable", Description: "Braided cable", Price: 5, Rating: 3.0, Category: "electronics"},
	})
}

func testOptions(log interactions.Log) Options {
	return Options{
		Catalog: testCatalog(),
		Log:     log,
		Recommend: config.RecommendConfig{
			NumFactors:      4,
			NumIterations:   10,
			Regularization:  0.1,
			Alpha:           10,
			NumWorkers:      2,
			TrainTimeout:    time.Minute,
			MinInteractions: 4,
			KindWeights: map[string]float64{
				"view":         1,
				"view_details": 2,
				"like":         3,
				"add_to_cart":  4,
				"rating":       1,
			},
		},
		Ranking: config.RankingConfig{
			ScoreBound:            1e6,
			KeywordScore:          0.5,
			MinSimilarity:         0,
			PartialCategoryWeight: 0.5,
		},
		Cache:  config.CacheConfig{Enabled: true, Capacity: 16, TTL: time.Minute},
		Now:    func() time.Time { return testNow },
		Logger: zerolog.Nop(),
	}
}

func newTestEngine(t *testing.T, log interactions.Log, mutate ...func(*Options)) *Engine {
	t.Helper()
	if log == nil {
		log = interactions.NewMemoryLog()
	}
	opts := testOptions(log)
	for _, m := range mutate {
		m(&opts)
	}
	e, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func appendAll(t *testing.T, log interactions.Log, events ...interactions.Event) {
	t.Helper()
	for i := range events {
		if _, err := log.Append(context.Background(), &events[i]); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
}

// clusteredLog has two groups of users: phones (p1, p2) and furniture (p3, p4).
func clusteredLog(t *testing.T) *interactions.MemoryLog {
	t.Helper()
	log := interactions.NewMemoryLog()
	ev := func(user, product, kind string) interactions.Event {
		return interactions.Event{UserID: user, ProductID: product, Kind: kind, Timestamp: testNow.Add(-time.Hour)}
	}
	appendAll(t, log,
		ev("alice", "p1", interactions.KindViewDetails),
		ev("alice", "p2", interactions.KindAddToCart),
		ev("bob", "p1", interactions.KindLike),
		ev("bob", "p2", interactions.KindView),
		ev("carol", "p3", interactions.KindAddToCart),
		ev("carol", "p4", interactions.KindLike),
		ev("dave", "p3", interactions.KindLike),
		ev("dave", "p4", interactions.KindViewDetails),
	)
	return log
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func scoredIDs(items []ScoredProduct) []string {
	return ids(items, func(s ScoredProduct) string { return s.Product.ID })
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewEngine_RequiresCatalogAndLog(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(Options{Log: interactions.NewMemoryLog()}); err == nil {
		t.Error("NewEngine() without catalog should fail")
	}
	if _, err := NewEngine(Options{Catalog: testCatalog()}); err == nil {
		t.Error("NewEngine() without log should fail")
	}
}

func TestRecommend_PopularityFallback(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	res, err := e.Recommend(context.Background(), "anyone", 3)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.Strategy != "popularity" {
		t.Errorf("Strategy = %q, want popularity", res.Strategy)
	}
	// rating/(price+1): p5=0.5, p2=0.36, p3=0.029, p4=0.016, p1=0.009
	if got, want := scoredIDs(res.Items), []string{"p5", "p2", "p3"}; !equalIDs(got, want) {
		t.Errorf("Recommend() = %v, want %v", got, want)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "collaborative" {
		t.Errorf("Skipped = %v, want [collaborative]", res.Skipped)
	}
}

func TestRecommend_BoundedByK(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	for _, k := range []int{0, 1, 5, 50} {
		res, err := e.Recommend(context.Background(), "u", k)
		if err != nil {
			t.Fatalf("Recommend(k=%d) error = %v", k, err)
		}
		if len(res.Items) > k {
			t.Errorf("Recommend(k=%d) returned %d items", k, len(res.Items))
		}
		if k == 0 && res.Items == nil {
			t.Error("Recommend(k=0) returned nil, want empty slice")
		}
	}
}

func TestRecommend_Collaborative(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, clusteredLog(t))
	ctx := context.Background()
	if err := e.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	res, err := e.Recommend(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.Strategy != "collaborative" {
		t.Fatalf("Strategy = %q, want collaborative", res.Strategy)
	}
	got := map[string]bool{}
	for _, it := range res.Items {
		got[it.Product.ID] = true
	}
	if len(res.Items) != 2 || !got["p1"] || !got["p2"] {
		t.Errorf("Recommend(alice) = %v, want p1 and p2", scoredIDs(res.Items))
	}

	cold, err := e.Recommend(ctx, "stranger", 2)
	if err != nil {
		t.Fatalf("Recommend(stranger) error = %v", err)
	}
	if cold.Strategy != "collaborative" || len(cold.Items) != 2 {
		t.Errorf("cold start = %q %v", cold.Strategy, scoredIDs(cold.Items))
	}
}

func TestRecommend_ScoreBoundFallsBack(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, clusteredLog(t), func(o *Options) { o.Ranking.ScoreBound = 1e-12 })
	ctx := context.Background()
	if err := e.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	res, err := e.Recommend(ctx, "alice", 3)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.Strategy != "popularity" {
		t.Errorf("Strategy = %q, want popularity when every score is out of bounds", res.Strategy)
	}
}

func TestRecommend_CacheFlushedOnTrain(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, clusteredLog(t))
	ctx := context.Background()

	first, _ := e.Recommend(ctx, "alice", 2)
	second, _ := e.Recommend(ctx, "alice", 2)
	if first.Cached || !second.Cached {
		t.Fatalf("Cached = %v then %v, want false then true", first.Cached, second.Cached)
	}

	if err := e.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	third, _ := e.Recommend(ctx, "alice", 2)
	if third.Cached {
		t.Error("cache was not flushed by Train")
	}
	if third.Strategy != "collaborative" {
		t.Errorf("Strategy after Train = %q, want collaborative", third.Strategy)
	}
}

func TestRecommend_CacheDisabled(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, func(o *Options) { o.Cache.Enabled = false })
	ctx := context.Background()
	_, _ = e.Recommend(ctx, "u", 2)
	res, _ := e.Recommend(ctx, "u", 2)
	if res.Cached {
		t.Error("result cached with cache disabled")
	}
}

func TestTrain_InsufficientData(t *testing.T) {
	t.Parallel()

	log := interactions.NewMemoryLog()
	appendAll(t, log, interactions.Event{UserID: "u", ProductID: "p1", Kind: interactions.KindView})

	e := newTestEngine(t, log)
	err := e.Train(context.Background())
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Train() error = %v, want ErrInsufficientData", err)
	}
	st := e.Status()
	if st.IsTraining || st.Trained || st.LastError == "" {
		t.Errorf("Status() = %+v", st)
	}
}

// blockingLog holds Events until released so a training run stays active.
type blockingLog struct {
	interactions.Log
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingLog) Events(ctx context.Context, since time.Time) ([]interactions.Event, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.Log.Events(ctx, since)
}

func TestTrain_RejectsConcurrentRuns(t *testing.T) {
	t.Parallel()

	log := &blockingLog{Log: clusteredLog(t), entered: make(chan struct{}), release: make(chan struct{})}
	e := newTestEngine(t, log)

	done := make(chan error, 1)
	go func() { done <- e.Train(context.Background()) }()
	<-log.entered

	if !e.Status().IsTraining {
		t.Error("Status().IsTraining = false during a run")
	}
	if err := e.Train(context.Background()); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("second Train() error = %v, want ErrTrainingInProgress", err)
	}

	close(log.release)
	if err := <-done; err != nil {
		t.Fatalf("first Train() error = %v", err)
	}
	st := e.Status()
	if !st.Trained || st.ModelVersion != 1 || st.Users != 4 || st.Items != 4 || st.Interactions != 8 {
		t.Errorf("Status() = %+v", st)
	}
}

func TestTrainingData(t *testing.T) {
	t.Parallel()

	rating := 4.0
	events := []interactions.Event{
		{UserID: "u", ProductID: "p1", Kind: interactions.KindView},
		{UserID: "u", ProductID: "p2", Kind: interactions.KindRating, Rating: &rating},
		{UserID: "u", ProductID: "", Kind: interactions.KindSearch},
		{UserID: "u", ProductID: "p3", Kind: interactions.KindUnlike},
		{UserID: "", ProductID: "p4", Kind: interactions.KindLike},
	}
	weights := map[string]float64{"view": 1, "rating": 0.5, "unlike": 0, "like": 3}

	got := TrainingData(events, weights)
	if len(got) != 2 {
		t.Fatalf("TrainingData() returned %d, want 2: %+v", len(got), got)
	}
	if got[0].ItemID != "p1" || got[0].Confidence != 1 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].ItemID != "p2" || got[1].Confidence != 2 {
		t.Errorf("got[1] = %+v, want confidence 0.5*4", got[1])
	}
}

func TestStrategies(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, clusteredLog(t))
	if s := e.Strategies(); s.Collaborative || s.TFIDF || s.Semantic || s.Embedding {
		t.Errorf("fresh engine Strategies() = %+v", s)
	}

	ctx := context.Background()
	if err := e.Warm(ctx); err != nil {
		t.Fatal(err)
	}
	if err := e.Train(ctx); err != nil {
		t.Fatal(err)
	}
	table, err := embedding.NewTable(2, testVectors(), 5)
	if err != nil {
		t.Fatal(err)
	}
	e.SetEmbeddings(table)

	s := e.Strategies()
	if !s.Collaborative || !s.TFIDF || !s.Embedding {
		t.Errorf("Strategies() = %+v", s)
	}
	if s.Semantic {
		t.Error("Semantic should stay false without an embedder")
	}
}
