package usecase

import (
	"encoding/json"
	"math/rand/v2"
	"sync"
	"time"

	"aeye-server/internal/domain/catalog"
	"aeye-server/internal/domain/entity"
)

// Rand is the subset of *rand.Rand the synthesizer draws from.
type Rand interface {
	Float64() float64
	IntN(n int) int
	Perm(n int) []int
}

// LockedRand serializes access to a *rand.Rand so concurrent requests can share it.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewLockedRand(src rand.Source) *LockedRand {
	return &LockedRand{r: rand.New(src)}
}

// NewSeededRand is a convenience for tests and reproducible runs.
func NewSeededRand(seed uint64) *LockedRand {
	return NewLockedRand(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *LockedRand) Perm(n int) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Perm(n)
}

// Range is an inclusive integer interval.
type Range struct {
	Min int
	Max int
}

func (r Range) draw(rng Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.IntN(r.Max-r.Min+1)
}

// Contains reports whether v lies in the interval.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Policy holds the probabilities and bounds of the simulated analysis.
type Policy struct {
	FaceChance    float64
	UnknownChance float64
	ObjectChance  float64
	ContextChance float64

	MaxFaces   int
	MaxUnknown int
	MaxObjects int

	ProcessingTime Range // ms, reported only
	Delay          Range // ms, actually waited
}

// DefaultPolicy mirrors the behaviour the firmware was tuned against.
func DefaultPolicy() Policy {
	return Policy{
		FaceChance:     0.7,
		UnknownChance:  0.3,
		ObjectChance:   0.8,
		ContextChance:  0.6,
		MaxFaces:       3,
		MaxUnknown:     2,
		MaxObjects:     4,
		ProcessingTime: Range{Min: 500, Max: 2500},
		Delay:          Range{Min: 200, Max: 1200},
	}
}

// Synthesize builds a fresh response from independent draws. It has no side
// effects; the same Rand state always yields the same response.
func Synthesize(rng Rand, cat catalog.Catalogs, p Policy, now time.Time, deviceID json.RawMessage) entity.AnalysisResponse {
	resp := entity.AnalysisResponse{
		Status:          entity.StatusSuccess,
		Timestamp:       now.UnixMilli(),
		DeviceID:        deviceID,
		RecognizedFaces: []entity.DetectionItem{},
		Objects:         []entity.DetectionItem{},
	}

	if rng.Float64() < p.FaceChance {
		resp.RecognizedFaces = pickDistinct(rng, cat.Faces, 1+rng.IntN(max(p.MaxFaces, 1)))
	}

	if rng.Float64() < p.UnknownChance {
		resp.UnknownFaces = 1 + rng.IntN(max(p.MaxUnknown, 1))
	}

	if rng.Float64() < p.ObjectChance {
		resp.Objects = pickDistinct(rng, cat.Objects, 1+rng.IntN(max(p.MaxObjects, 1)))
	}

	if len(cat.Contexts) > 0 && rng.Float64() < p.ContextChance {
		c := cat.Contexts[rng.IntN(len(cat.Contexts))]
		resp.Context = &c
	}

	resp.ProcessingTime = p.ProcessingTime.draw(rng)
	return resp
}

// pickDistinct samples k items without replacement, in random order.
func pickDistinct(rng Rand, items []entity.DetectionItem, k int) []entity.DetectionItem {
	k = min(k, len(items))
	if k <= 0 {
		return []entity.DetectionItem{}
	}
	perm := rng.Perm(len(items))
	out := make([]entity.DetectionItem, k)
	for i := range k {
		out[i] = items[perm[i]]
	}
	return out
}
