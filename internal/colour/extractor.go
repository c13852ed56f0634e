package colour

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
)

var (
	// ErrEmptySamples is returned when there are no samples to cluster.
	ErrEmptySamples = errors.New("no samples to cluster")

	// ErrTooManyClusters is returned when more clusters are requested than
	// there are distinct samples.
	ErrTooManyClusters = errors.New("cluster count exceeds distinct samples")

	// ErrInvalidClusterCount is returned for a cluster count below 1.
	ErrInvalidClusterCount = errors.New("cluster count must be at least 1")
)

// DefaultSeed is the seed used when ExtractorOptions.Seed is nil.
const DefaultSeed int64 = 42

// Clustering is the result of partitioning a set of points.
type Clustering struct {
	// Centers holds one centre per cluster, in cluster-index order.
	Centers []Point

	// Labels assigns each input point to an index into Centers.
	Labels []int

	// SubsampleLabels holds the graph-affinity assignment of the subsample.
	// Only the spectral method sets it.
	SubsampleLabels []int

	// Iterations is the number of refinement passes the final run took.
	Iterations int
}

// Extractor partitions points into k clusters.
type Extractor interface {
	// Extract returns k cluster centres and per-point assignments.
	Extract(ctx context.Context, points []Point, k int) (*Clustering, error)
}

// Method represents the clustering method used for palette extraction.
type Method string

const (
	// MethodKMeans runs full-data k-means (k-means++ seeding, Lloyd refinement).
	MethodKMeans Method = "kmeans"

	// MethodMiniBatch approximates k-means with random mini-batches.
	MethodMiniBatch Method = "minibatch"

	// MethodSpectral assigns a subsample with spectral (graph-affinity)
	// clustering; centres always come from MethodKMeans over the full set.
	MethodSpectral Method = "spectral"
)

var methodAliases = map[string]Method{
	"kmeans":              MethodKMeans,
	"k-means":             MethodKMeans,
	"standard":            MethodKMeans,
	"minibatch":           MethodMiniBatch,
	"mini-batch":          MethodMiniBatch,
	"mini_batch":          MethodMiniBatch,
	"minibatch_kmeans":    MethodMiniBatch,
	"minibatchkmeans":     MethodMiniBatch,
	"spectral":            MethodSpectral,
	"spectral_clustering": MethodSpectral,
	"graph":               MethodSpectral,
}

// ValidMethods returns a list of valid method names.
func ValidMethods() []Method {
	return []Method{MethodKMeans, MethodMiniBatch, MethodSpectral}
}

// IsValidMethod checks if the given method name is valid.
func IsValidMethod(m Method) bool {
	return slices.Contains(ValidMethods(), m)
}

// ParseMethod converts a name or a common alias to a Method.
func ParseMethod(s string) (Method, error) {
	if m, ok := methodAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown clustering method: %s (valid methods: %v)", s, ValidMethods())
}

// ExtractorOptions configures extractor construction.
type ExtractorOptions struct {
	// Seed fixes the random source. Nil means DefaultSeed.
	Seed *int64

	// MaxIterations caps refinement passes. Zero selects the method default.
	MaxIterations int

	// BatchSize is the mini-batch size. Zero selects the default (1024).
	BatchSize int

	// SubsampleSize bounds the spectral subsample. Zero selects the default (1000).
	SubsampleSize int

	// Logger receives debug output. Nil disables logging.
	Logger hclog.Logger
}

func (o ExtractorOptions) seed() int64 {
	if o.Seed != nil {
		return *o.Seed
	}
	return DefaultSeed
}

func (o ExtractorOptions) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

// NewExtractor creates a new Extractor for the specified method.
// Returns an error if the method is not recognised.
func NewExtractor(m Method, opts ExtractorOptions) (Extractor, error) {
	switch m {
	case MethodKMeans:
		return NewKMeansExtractor(opts), nil
	case MethodMiniBatch:
		return NewMiniBatchExtractor(opts), nil
	case MethodSpectral:
		return NewSpectralExtractor(opts), nil
	default:
		return nil, fmt.Errorf("unknown clustering method: %s (valid methods: %v)", m, ValidMethods())
	}
}

// validateInput checks the shared preconditions of every method and returns
// the distinct points in first-appearance order.
func validateInput(points []Point, k int) ([]Point, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidClusterCount, k)
	}
	if len(points) == 0 {
		return nil, ErrEmptySamples
	}

	seen := make(map[Point]struct{})
	distinct := make([]Point, 0, k+1)
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		distinct = append(distinct, p)
	}

	if k > len(distinct) {
		return nil, fmt.Errorf("%w: requested %d, image has %d", ErrTooManyClusters, k, len(distinct))
	}
	return distinct, nil
}

// exactClustering handles k equal to the number of distinct points: every
// distinct point becomes its own centre, in first-appearance order.
func exactClustering(points, distinct []Point) *Clustering {
	index := make(map[Point]int, len(distinct))
	for i, p := range distinct {
		index[p] = i
	}
	labels := make([]int, len(points))
	for i, p := range points {
		labels[i] = index[p]
	}
	centers := make([]Point, len(distinct))
	copy(centers, distinct)
	return &Clustering{Centers: centers, Labels: labels}
}

// newRand returns a deterministic random source for the given seed.
func newRand(seed int64) *rand.Rand {
	// #nosec G404 -- reproducible clustering, not security sensitive
	return rand.New(rand.NewSource(seed))
}
