package colour

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/hashicorp/go-hclog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const defaultSubsampleSize = 1000

// SpectralExtractor clusters a random subsample through a graph-affinity
// embedding (Ng, Jordan & Weiss). The graph method has no notion of a
// centroid, so the returned centres and full-set labels always come from
// standard k-means over every point; the subsample assignment is reported in
// Clustering.SubsampleLabels.
type SpectralExtractor struct {
	subsampleSize int
	seed          int64
	standard      *KMeansExtractor
	logger        hclog.Logger
}

// NewSpectralExtractor creates a new SpectralExtractor.
func NewSpectralExtractor(opts ExtractorOptions) *SpectralExtractor {
	size := opts.SubsampleSize
	if size <= 0 {
		size = defaultSubsampleSize
	}
	return &SpectralExtractor{
		subsampleSize: size,
		seed:          opts.seed(),
		standard:      NewKMeansExtractor(opts),
		logger:        opts.logger().Named("spectral"),
	}
}

// Extract assigns a subsample by spectral clustering, then derives centres
// with standard k-means over the full set.
func (e *SpectralExtractor) Extract(ctx context.Context, points []Point, k int) (*Clustering, error) {
	if _, err := validateInput(points, k); err != nil {
		return nil, err
	}

	rng := newRand(e.seed)
	sub := subsample(points, e.subsampleSize, rng)

	subLabels, err := spectralAssign(ctx, sub, k, rng)
	if err != nil {
		return nil, fmt.Errorf("spectral assignment failed: %w", err)
	}

	sizes := make([]int, k)
	for _, l := range subLabels {
		sizes[l]++
	}
	e.logger.Debug("spectral subsample assigned", "subsample", len(sub), "k", k, "sizes", sizes)

	result, err := e.standard.Extract(ctx, points, k)
	if err != nil {
		return nil, err
	}
	result.SubsampleLabels = subLabels
	return result, nil
}

// subsample draws at most n points without replacement. When the input is
// no larger than n it is returned unchanged.
func subsample(points []Point, n int, rng *rand.Rand) []Point {
	if len(points) <= n {
		return points
	}
	perm := rng.Perm(len(points))[:n]
	out := make([]Point, n)
	for i, idx := range perm {
		out[i] = points[idx]
	}
	return out
}

// spectralAssign returns a cluster label for every point in sub.
func spectralAssign(ctx context.Context, sub []Point, k int, rng *rand.Rand) ([]int, error) {
	n := len(sub)
	dims := min(k, n)

	// RBF affinity scaled by the mean squared pairwise distance so that the
	// kernel width adapts to the working colour space.
	sqDist := make([]float64, n*n)
	var meanSq float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := sub[i].distanceSq(sub[j])
			sqDist[i*n+j] = d
			sqDist[j*n+i] = d
			meanSq += 2 * d
		}
	}
	if n > 1 {
		meanSq /= float64(n * (n - 1))
	}
	if meanSq == 0 {
		// All points identical: a single real cluster.
		return make([]int, n), nil
	}
	gamma := 1 / meanSq

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	affinity := make([]float64, n*n)
	degree := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			w := math.Exp(-gamma * sqDist[i*n+j])
			affinity[i*n+j] = w
			degree[i] += w
		}
	}

	// Normalised affinity D^-1/2 W D^-1/2.
	invSqrt := make([]float64, n)
	for i, d := range degree {
		if d > 0 {
			invSqrt[i] = 1 / math.Sqrt(d)
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			affinity[i*n+j] *= invSqrt[i] * invSqrt[j]
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(mat.NewSymDense(n, affinity), true); !ok {
		return nil, fmt.Errorf("eigen decomposition did not converge")
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Eigenvalues come back in ascending order; the embedding uses the
	// eigenvectors of the largest ones, rows normalised to unit length.
	embedding := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, dims)
		for d := 0; d < dims; d++ {
			row[d] = vectors.At(i, n-1-d)
		}
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
		embedding[i] = row
	}

	return clusterEmbedding(embedding, k, rng), nil
}

// clusterEmbedding runs k-means++ / Lloyd on the spectral embedding rows.
func clusterEmbedding(rows [][]float64, k int, rng *rand.Rand) []int {
	n := len(rows)
	labels := make([]int, n)
	if k >= n {
		for i := range labels {
			labels[i] = i
		}
		return labels
	}

	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), rows[rng.Intn(n)]...))
	dist := make([]float64, n)
	for len(centers) < k {
		total := 0.0
		for i, r := range rows {
			dist[i] = math.MaxFloat64
			for _, c := range centers {
				if d := floats.Distance(r, c, 2); d*d < dist[i] {
					dist[i] = d * d
				}
			}
			total += dist[i]
		}
		pick := rng.Intn(n)
		if total > 0 {
			target := rng.Float64() * total
			cumulative := 0.0
			for i, d := range dist {
				cumulative += d
				if cumulative >= target {
					pick = i
					break
				}
			}
		}
		centers = append(centers, append([]float64(nil), rows[pick]...))
	}

	for iter := 0; iter < 100; iter++ {
		changed := 0
		for i, r := range rows {
			best, bestDist := 0, math.MaxFloat64
			for c, center := range centers {
				if d := floats.Distance(r, center, 2); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best || iter == 0 {
				labels[i] = best
				changed++
			}
		}
		if changed == 0 {
			break
		}

		counts := make([]int, k)
		for c := range centers {
			for d := range centers[c] {
				centers[c][d] = 0
			}
		}
		for i, r := range rows {
			floats.Add(centers[labels[i]], r)
			counts[labels[i]]++
		}
		for c := range centers {
			if counts[c] == 0 {
				copy(centers[c], rows[rng.Intn(n)])
				continue
			}
			floats.Scale(1/float64(counts[c]), centers[c])
		}
	}

	return labels
}
