package colour

import (
	"context"
	"math"
	"math/rand"

	"github.com/hashicorp/go-hclog"
)

// KMeansExtractor implements standard k-means over the full point set.
// Results are reproducible: every call seeds a fresh random source with the
// configured seed.
type KMeansExtractor struct {
	maxIterations int
	tolerance     float64
	attempts      int
	seed          int64
	logger        hclog.Logger
}

// NewKMeansExtractor creates a new KMeansExtractor.
func NewKMeansExtractor(opts ExtractorOptions) *KMeansExtractor {
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = 100
	}
	return &KMeansExtractor{
		maxIterations: maxIter,
		tolerance:     1e-4,
		attempts:      3,
		seed:          opts.seed(),
		logger:        opts.logger().Named("kmeans"),
	}
}

// Extract partitions points into k clusters. The best of several k-means++
// initialisations (lowest inertia) is returned.
func (e *KMeansExtractor) Extract(ctx context.Context, points []Point, k int) (*Clustering, error) {
	distinct, err := validateInput(points, k)
	if err != nil {
		return nil, err
	}
	if k == len(distinct) {
		return exactClustering(points, distinct), nil
	}

	rng := newRand(e.seed)

	var best *Clustering
	bestInertia := math.MaxFloat64
	for attempt := 0; attempt < e.attempts; attempt++ {
		centers := initializeCentroidsKMeansPlusPlus(points, k, rng)
		result, inertia, err := lloyd(ctx, points, centers, e.maxIterations, e.tolerance, rng)
		if err != nil {
			return nil, err
		}
		e.logger.Trace("k-means attempt finished", "attempt", attempt, "iterations", result.Iterations, "inertia", inertia)
		if inertia < bestInertia {
			best, bestInertia = result, inertia
		}
	}

	e.logger.Debug("k-means complete", "points", len(points), "k", k, "inertia", bestInertia)
	return best, nil
}

// lloyd refines centres until the mean centre movement drops below tolerance
// or maxIterations is reached. Returns the clustering and its inertia.
func lloyd(ctx context.Context, points []Point, centers []Point, maxIterations int, tolerance float64, rng *rand.Rand) (*Clustering, float64, error) {
	k := len(centers)
	labels := make([]int, len(points))
	iterations := 0

	for iter := 0; iter < maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		iterations++

		// Assign each point to nearest centroid.
		for i, p := range points {
			labels[i], _ = findNearestCentroid(p, centers)
		}

		newCenters := recalculateCentroids(points, labels, k, rng)

		// Check for convergence based on centroid movement.
		movement := 0.0
		for i := range centers {
			movement += math.Sqrt(centers[i].distanceSq(newCenters[i]))
		}
		centers = newCenters

		if movement/float64(k) < tolerance {
			break
		}
	}

	// Final assignment against the settled centres.
	inertia := 0.0
	for i, p := range points {
		var d float64
		labels[i], d = findNearestCentroid(p, centers)
		inertia += d
	}

	return &Clustering{Centers: centers, Labels: labels, Iterations: iterations}, inertia, nil
}

// initializeCentroidsKMeansPlusPlus initializes centroids using k-means++ algorithm.
// This provides better initial centroids than random selection.
func initializeCentroidsKMeansPlusPlus(points []Point, k int, rng *rand.Rand) []Point {
	if len(points) == 0 || k == 0 {
		return []Point{}
	}

	centroids := make([]Point, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	// Squared distance from each point to its nearest chosen centroid.
	distances := make([]float64, len(points))
	for i, p := range points {
		distances[i] = p.distanceSq(centroids[0])
	}

	for len(centroids) < k {
		total := 0.0
		for _, d := range distances {
			total += d
		}

		var next Point
		if total == 0 {
			// Every point coincides with a chosen centroid.
			next = points[rng.Intn(len(points))]
		} else {
			target := rng.Float64() * total
			cumulative := 0.0
			next = points[len(points)-1]
			for i, d := range distances {
				cumulative += d
				if cumulative >= target && d > 0 {
					next = points[i]
					break
				}
			}
		}
		centroids = append(centroids, next)

		for i, p := range points {
			if d := p.distanceSq(next); d < distances[i] {
				distances[i] = d
			}
		}
	}

	return centroids
}

// findNearestCentroid returns the index of the nearest centroid to a point
// and the squared distance to it.
func findNearestCentroid(point Point, centroids []Point) (int, float64) {
	minDist := math.MaxFloat64
	nearest := 0

	for i, centroid := range centroids {
		dist := point.distanceSq(centroid)
		if dist < minDist {
			minDist = dist
			nearest = i
		}
	}

	return nearest, minDist
}

// recalculateCentroids recalculates centroid positions based on assigned points.
func recalculateCentroids(points []Point, assignments []int, k int, rng *rand.Rand) []Point {
	sums := make([]Point, k)
	counts := make([]int, k)

	for i, p := range points {
		c := assignments[i]
		sums[c][0] += p[0]
		sums[c][1] += p[1]
		sums[c][2] += p[2]
		counts[c]++
	}

	centroids := make([]Point, k)
	for i := range k {
		if counts[i] > 0 {
			n := float64(counts[i])
			centroids[i] = Point{sums[i][0] / n, sums[i][1] / n, sums[i][2] / n}
		} else {
			// Empty cluster - reinitialize from a random point.
			centroids[i] = points[rng.Intn(len(points))]
		}
	}

	return centroids
}
