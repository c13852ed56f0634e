package colour

import (
	"context"
	"math"

	"github.com/hashicorp/go-hclog"
)

const (
	defaultBatchSize          = 1024
	defaultMiniBatchIteration = 100
)

// MiniBatchExtractor approximates k-means by updating centres from random
// mini-batches (Sculley, "Web-scale k-means clustering", 2010). It trades
// exactness for speed on large images.
type MiniBatchExtractor struct {
	batchSize     int
	maxIterations int
	tolerance     float64
	seed          int64
	logger        hclog.Logger
}

// NewMiniBatchExtractor creates a new MiniBatchExtractor.
func NewMiniBatchExtractor(opts ExtractorOptions) *MiniBatchExtractor {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMiniBatchIteration
	}
	return &MiniBatchExtractor{
		batchSize:     batch,
		maxIterations: maxIter,
		tolerance:     1e-3,
		seed:          opts.seed(),
		logger:        opts.logger().Named("minibatch"),
	}
}

// Extract partitions points into k clusters using mini-batch updates.
func (e *MiniBatchExtractor) Extract(ctx context.Context, points []Point, k int) (*Clustering, error) {
	distinct, err := validateInput(points, k)
	if err != nil {
		return nil, err
	}
	if k == len(distinct) {
		return exactClustering(points, distinct), nil
	}

	rng := newRand(e.seed)

	// Seed the centres with k-means++ over an initial random batch. The batch
	// may miss colours, so fall back to the distinct set when it is too thin.
	initSize := min(len(points), 3*e.batchSize)
	initPoints := make([]Point, initSize)
	for i := range initPoints {
		initPoints[i] = points[rng.Intn(len(points))]
	}
	if countDistinct(initPoints) < k {
		initPoints = distinct
	}
	centers := initializeCentroidsKMeansPlusPlus(initPoints, k, rng)

	counts := make([]float64, k)
	batch := make([]int, min(e.batchSize, len(points)))
	iterations := 0

	for iter := 0; iter < e.maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iterations++

		for i := range batch {
			batch[i] = rng.Intn(len(points))
		}

		previous := make([]Point, k)
		copy(previous, centers)

		// Per-centre learning rate 1/count moves each centre towards the
		// running mean of the points it has absorbed.
		for _, idx := range batch {
			p := points[idx]
			c, _ := findNearestCentroid(p, centers)
			counts[c]++
			eta := 1 / counts[c]
			centers[c][0] += eta * (p[0] - centers[c][0])
			centers[c][1] += eta * (p[1] - centers[c][1])
			centers[c][2] += eta * (p[2] - centers[c][2])
		}

		movement := 0.0
		for i := range centers {
			movement += math.Sqrt(previous[i].distanceSq(centers[i]))
		}
		if movement/float64(k) < e.tolerance {
			break
		}
	}

	labels := make([]int, len(points))
	for i, p := range points {
		labels[i], _ = findNearestCentroid(p, centers)
	}

	e.logger.Debug("mini-batch k-means complete", "points", len(points), "k", k, "batch", len(batch), "iterations", iterations)
	return &Clustering{Centers: centers, Labels: labels, Iterations: iterations}, nil
}

func countDistinct(points []Point) int {
	seen := make(map[Point]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}
