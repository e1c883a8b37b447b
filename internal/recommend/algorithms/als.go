// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package algorithms

import (
	"cmp"
	"context"
	"math"
	"slices"
	"sync"
)

// ALSConfig contains configuration for the ALS algorithm.
type ALSConfig struct {
	// NumFactors is the dimension of the latent factor vectors.
	NumFactors int

	// NumIterations is the number of alternating sweeps.
	NumIterations int

	// Regularization is the L2 penalty (lambda).
	Regularization float64

	// Alpha scales confidence: c = 1 + alpha * r.
	Alpha float64

	// NumWorkers bounds the goroutines used per sweep. Defaults to 4.
	NumWorkers int
}

// DefaultALSConfig returns default ALS configuration.
func DefaultALSConfig() ALSConfig {
	return ALSConfig{
		NumFactors:     32,
		NumIterations:  15,
		Regularization: 0.01,
		Alpha:          40.0,
		NumWorkers:     4,
	}
}

// ALS factorizes the user-item confidence matrix into user factors X and
// item factors Y, minimizing
//
//	sum_{u,i} c_ui * (p_ui - x_u' * y_i)^2 + lambda * (||x_u||^2 + ||y_i||^2)
//
// where p_ui is 1 for observed pairs and c_ui = 1 + alpha * r_ui.
type ALS struct {
	Model
	config ALSConfig

	model *alsModel
}

// alsModel is an immutable trained snapshot.
type alsModel struct {
	X [][]float64
	Y [][]float64

	userIndex   map[string]int
	indexToUser []string
	indexToItem []string
}

// NewALS creates a new ALS algorithm with the given configuration.
func NewALS(cfg ALSConfig) *ALS {
	def := DefaultALSConfig()
	if cfg.NumFactors <= 0 {
		cfg.NumFactors = def.NumFactors
	}
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = def.NumIterations
	}
	if cfg.Regularization <= 0 {
		cfg.Regularization = def.Regularization
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = def.Alpha
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = def.NumWorkers
	}

	return &ALS{
		Model:  Model{name: "als"},
		config: cfg,
	}
}

// Train fits a new model and swaps it in. Queries served while training
// runs see the previous model. Users and items are indexed in order of
// first appearance, which keeps training deterministic.
func (a *ALS) Train(ctx context.Context, interactions []Interaction) error {
	m, err := a.fit(ctx, interactions)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.model = m
	a.stamp()
	return nil
}

//nolint:gocyclo // alternating optimization is inherently branchy
func (a *ALS) fit(ctx context.Context, interactions []Interaction) (*alsModel, error) {
	if canceled(ctx) {
		return nil, ctx.Err()
	}

	m := &alsModel{userIndex: make(map[string]int)}
	itemIndex := make(map[string]int)

	// userItems[u][i] = confidence; repeated pairs accumulate.
	var userItems []map[int]float64
	for _, in := range interactions {
		if in.Confidence <= 0 || in.UserID == "" || in.ItemID == "" {
			continue
		}
		ui, ok := m.userIndex[in.UserID]
		if !ok {
			ui = len(m.indexToUser)
			m.userIndex[in.UserID] = ui
			m.indexToUser = append(m.indexToUser, in.UserID)
			userItems = append(userItems, make(map[int]float64))
		}
		ii, ok := itemIndex[in.ItemID]
		if !ok {
			ii = len(m.indexToItem)
			itemIndex[in.ItemID] = ii
			m.indexToItem = append(m.indexToItem, in.ItemID)
		}
		userItems[ui][ii] += in.Confidence
	}

	numUsers, numItems := len(m.indexToUser), len(m.indexToItem)
	if numUsers == 0 || numItems == 0 {
		return m, nil
	}

	userObs := make([][]observation, numUsers)
	itemObs := make([][]observation, numItems)
	for ui, items := range userItems {
		userObs[ui] = sortedObservations(items, a.config.Alpha)
	}
	for ui, obs := range userObs {
		for _, o := range obs {
			itemObs[o.idx] = append(itemObs[o.idx], observation{idx: ui, c: o.c})
		}
	}

	k := a.config.NumFactors
	m.X = initFactors(numUsers, k)
	m.Y = initFactors(numItems, k)

	lambda := a.config.Regularization
	for iter := 0; iter < a.config.NumIterations; iter++ {
		if canceled(ctx) {
			return nil, ctx.Err()
		}
		sweep(m.X, m.Y, userObs, lambda, a.config.NumWorkers)

		if canceled(ctx) {
			return nil, ctx.Err()
		}
		sweep(m.Y, m.X, itemObs, lambda, a.config.NumWorkers)
	}
	return m, nil
}

// observation is one confidence entry of a user or item row.
type observation struct {
	idx int
	c   float64
}

// sortedObservations converts raw counts r to confidence 1 + alpha*r,
// ordered by index so the normal equations sum in a fixed order.
func sortedObservations(counts map[int]float64, alpha float64) []observation {
	obs := make([]observation, 0, len(counts))
	for idx, r := range counts {
		obs = append(obs, observation{idx: idx, c: 1.0 + alpha*r})
	}
	slices.SortFunc(obs, func(a, b observation) int { return cmp.Compare(a.idx, b.idx) })
	return obs
}

// initFactors returns small deterministic starting values.
func initFactors(rows, k int) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, k)
		for f := 0; f < k; f++ {
			out[r][f] = 0.1 * (float64((r*k+f)%1000)/1000.0 - 0.5)
		}
	}
	return out
}

// sweep solves every row of target with fixed held constant:
//
//	target_r = (F'F + F' (C^r - I) F + lambda I)^-1 F' C^r p^r
//
// Rows are split into contiguous chunks across workers.
func sweep(target, fixed [][]float64, observed [][]observation, lambda float64, workers int) {
	gram := gramMatrix(fixed)

	rows := len(target)
	chunk := (rows + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, rows)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for r := start; r < end; r++ {
				target[r] = solveRow(fixed, observed[r], gram, lambda)
			}
		}(start, end)
	}
	wg.Wait()
}

// gramMatrix returns F'F.
func gramMatrix(f [][]float64) [][]float64 {
	k := len(f[0])
	g := make([][]float64, k)
	for i := range g {
		g[i] = make([]float64, k)
	}
	for _, row := range f {
		for f1 := 0; f1 < k; f1++ {
			for f2 := f1; f2 < k; f2++ {
				g[f1][f2] += row[f1] * row[f2]
			}
		}
	}
	for f1 := 0; f1 < k; f1++ {
		for f2 := 0; f2 < f1; f2++ {
			g[f1][f2] = g[f2][f1]
		}
	}
	return g
}

//nolint:gocritic // A follows standard linear algebra notation
func solveRow(fixed [][]float64, conf []observation, gram [][]float64, lambda float64) []float64 {
	k := len(gram)
	A := make([][]float64, k)
	for f := range A {
		A[f] = make([]float64, k)
		copy(A[f], gram[f])
		A[f][f] += lambda
	}

	b := make([]float64, k)
	for _, o := range conf {
		y, c := fixed[o.idx], o.c
		cMinus1 := c - 1.0
		for f1 := 0; f1 < k; f1++ {
			for f2 := f1; f2 < k; f2++ {
				delta := cMinus1 * y[f1] * y[f2]
				A[f1][f2] += delta
				if f1 != f2 {
					A[f2][f1] += delta
				}
			}
			b[f1] += c * y[f1]
		}
	}
	return solveCholesky(A, b)
}

// solveCholesky solves A*x = b for symmetric positive definite A.
// Non-positive pivots are clamped so a degenerate system still yields a
// finite answer.
//
//nolint:gocritic // A, L follow standard linear algebra notation
func solveCholesky(A [][]float64, b []float64) []float64 {
	n := len(b)
	L := make([][]float64, n)
	for i := range L {
		L[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := A[i][j]
			for k := 0; k < j; k++ {
				sum -= L[i][k] * L[j][k]
			}
			if i == j {
				if sum <= 0 {
					sum = 1e-10
				}
				L[i][j] = math.Sqrt(sum)
			} else if L[j][j] != 0 {
				L[i][j] = sum / L[j][j]
			}
		}
	}

	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= L[i][j] * z[j]
		}
		z[i] = sum / L[i][i]
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < n; j++ {
			sum -= L[j][i] * x[j]
		}
		x[i] = sum / L[i][i]
	}
	return x
}

// Ready reports whether a model with at least one user and item is loaded.
func (a *ALS) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model != nil && len(a.model.X) > 0 && len(a.model.Y) > 0
}

// Size returns the number of users and items in the current model.
func (a *ALS) Size() (users, items int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.model == nil {
		return 0, 0
	}
	return len(a.model.indexToUser), len(a.model.indexToItem)
}

// Score returns x_u' * y_i for every item, in item index order. Users
// absent from training are scored with row 0 and known is false. It
// returns nil when no model is ready.
func (a *ALS) Score(userID string) (scores []ItemScore, known bool) {
	a.mu.RLock()
	m := a.model
	a.mu.RUnlock()

	if m == nil || len(m.X) == 0 || len(m.Y) == 0 {
		return nil, false
	}

	ui, known := m.userIndex[userID]
	if !known {
		ui = 0
	}
	x := m.X[ui]

	scores = make([]ItemScore, len(m.Y))
	for ii, y := range m.Y {
		var s float64
		for f := range x {
			s += x[f] * y[f]
		}
		scores[ii] = ItemScore{ItemID: m.indexToItem[ii], Score: s}
	}
	return scores, known
}
