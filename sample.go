package statues

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// SampleConfig controls Monte-Carlo sampling.
type SampleConfig struct {
	Seed     int64 // 0 draws a seed from crypto/rand
	MaxTries int   // rejected worlds allowed per sample before giving up
}

// DefaultSampleConfig returns sensible defaults.
func DefaultSampleConfig() SampleConfig {
	return SampleConfig{
		Seed:     0,
		MaxTries: 10000,
	}
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a generator seeded with seed, or with NewSeed when seed
// is zero.
func NewRand(seed int64) (*rand.Rand, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Sampler draws values of a node by simulating whole worlds.
//
// Each sample draws every node reachable from the root at most once, so
// shared variables keep one value per world exactly as bindings do during
// enumeration. A world where a guard of Given or a clause table fails is
// rejected and drawn again. A Sampler is not safe for concurrent use.
type Sampler[P Prob[P]] struct {
	root Node[P]
	ps   *pass[P]
	cfg  SampleConfig
}

// NewSampler prepares sampling of root under ev, which may be nil.
func NewSampler[P Prob[P]](ctx context.Context, root Node[P], ev *Evidence[P], cfg SampleConfig) (*Sampler[P], error) {
	if cfg.MaxTries <= 0 {
		cfg.MaxTries = DefaultSampleConfig().MaxTries
	}
	root, observed := ev.apply(root)
	ps, err := newPass(ctx, observed, root)
	if err != nil {
		return nil, err
	}
	if ps.rng, err = NewRand(cfg.Seed); err != nil {
		return nil, err
	}
	return &Sampler[P]{root: root, ps: ps, cfg: cfg}, nil
}

// Next draws one value.
func (s *Sampler[P]) Next() (any, error) {
	for try := 0; try < s.cfg.MaxTries; try++ {
		if err := s.ps.ctx.Err(); err != nil {
			return nil, newError(KindEvaluation, err, "sampling canceled")
		}
		s.ps.drawn = make(map[Node[P]]any)
		v, err := s.ps.sample(s.root)
		if errors.Is(err, errReject) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, infeasiblef("no sample satisfies the conditions after %d tries", s.cfg.MaxTries)
}

// SampleNode draws count values of root.
func SampleNode[P Prob[P]](ctx context.Context, root Node[P], count int, cfg SampleConfig) ([]any, error) {
	if count < 0 {
		return nil, domainf("sample count must be non-negative, got %d", count)
	}
	s, err := NewSampler(ctx, root, nil, cfg)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, count)
	for i := 0; i < count; i++ {
		v, err := s.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// EstimateMC approximates the distribution of root from count samples.
func EstimateMC[P Prob[P]](ctx context.Context, root Node[P], count int, cfg SampleConfig) (*Leaf[P], error) {
	if count <= 0 {
		return nil, domainf("estimate requires a positive sample count, got %d", count)
	}
	vals, err := SampleNode(ctx, root, count, cfg)
	if err != nil {
		return nil, err
	}
	est := NewEstimator(count)
	for _, v := range vals {
		est.Record(v)
	}
	return EstimatorLeaf[P](est)
}

// RandomDraw evaluates n and draws count distinct values from it, each one
// drawn among the values not drawn yet with renormalized probabilities.
// count < 0 draws every value, in a random order favoring likely values.
func RandomDraw[P Prob[P]](n Node[P], count int, sorted bool, rng *rand.Rand) ([]any, error) {
	l, err := Eval(n)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		count = l.Len()
	}
	if count > l.Len() {
		return nil, domainf("number of values to draw without replacement (%d) exceeds the number of possible values (%d)", count, l.Len())
	}
	out := make([]any, 0, count)
	for len(out) < count {
		v, err := l.Sample(rng)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if len(out) == count {
			break
		}
		if l, err = l.without(l.d.index[valueKey(v)]); err != nil {
			return nil, err
		}
	}
	if sorted {
		sortValues(out)
	}
	return out, nil
}

// Estimator accumulates observed values in a fixed-size ring buffer and
// turns the most recent ones into an empirical distribution.
//
// The buffer size sets the window: older values are overwritten once it is
// full. An Estimator is safe for concurrent use.
type Estimator struct {
	mu          sync.RWMutex
	samples     []any
	maxSamples  int
	writeIndex  int
	sampleCount int64
}

// NewEstimator creates an estimator keeping the last maxSamples values.
func NewEstimator(maxSamples int) *Estimator {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	return &Estimator{
		samples:    make([]any, maxSamples),
		maxSamples: maxSamples,
	}
}

// Record adds a value.
func (e *Estimator) Record(v any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.samples[e.writeIndex] = v
	e.writeIndex = (e.writeIndex + 1) % e.maxSamples
	e.sampleCount++
}

// Count returns the number of values recorded since creation.
func (e *Estimator) Count() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sampleCount
}

// Counts returns the occurrences of each value in the window, in
// first-seen order.
func (e *Estimator) Counts() []ValCount {
	e.mu.RLock()
	defer e.mu.RUnlock()

	index := make(map[any]int)
	var out []ValCount
	for _, v := range e.samples[:e.effectiveSampleCount()] {
		k := valueKey(v)
		if i, ok := index[k]; ok {
			out[i].Count++
			continue
		}
		index[k] = len(out)
		out = append(out, ValCount{Val: v, Count: 1})
	}
	return out
}

func (e *Estimator) effectiveSampleCount() int {
	if e.sampleCount < int64(e.maxSamples) {
		return int(e.sampleCount)
	}
	return e.maxSamples
}

// EstimatorLeaf builds the empirical distribution of the values in e's
// window.
func EstimatorLeaf[P Prob[P]](e *Estimator) (*Leaf[P], error) {
	counts := e.Counts()
	if len(counts) == 0 {
		return nil, constructionf("cannot build a probability distribution with no value")
	}
	return FromCounts[P](counts...)
}
