// Package calibration measures how the cost of a Chudnovsky term evolves
// along the iteration range and derives the ratio table of the cheater
// scheme from it, so that every thread receives the same share of work.
package calibration

import (
	"fmt"
	"sort"

	"github.com/agbru/picalc/internal/partition"
)

// ThreadCounts lists the thread counts a ratio table covers up to
// maxThreads: two, then every multiple of four.
func ThreadCounts(maxThreads int) []int {
	if maxThreads < 2 {
		return nil
	}
	counts := []int{2}
	for t := 4; t <= min(maxThreads, partition.MaxRatioThreads); t += 4 {
		counts = append(counts, t)
	}
	return counts
}

// costModel interpolates a CostProfile over every iteration index.
type costModel struct {
	n int
	// prefix[i] is the cost of terms [0, i).
	prefix []float64
	// seed[i] is the cost of seeding a state at i.
	seed []float64
}

func newCostModel(p CostProfile) (*costModel, error) {
	if p.Iterations < 1 || len(p.Segments) == 0 {
		return nil, fmt.Errorf("calibration: empty cost profile")
	}
	segs := append([]SegmentCost(nil), p.Segments...)
	sort.Slice(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })

	m := &costModel{
		n:      p.Iterations,
		prefix: make([]float64, p.Iterations+1),
		seed:   make([]float64, p.Iterations),
	}
	next := 0
	for i := range p.Iterations {
		for next+1 < len(segs) && segs[next+1].Start <= i {
			next++
		}
		cur := segs[next]
		if i < cur.Start || i >= cur.End {
			return nil, fmt.Errorf("calibration: iteration %d is not covered by the profile", i)
		}
		m.prefix[i+1] = m.prefix[i] + cur.PerTerm()
		m.seed[i] = interpolateSeed(segs, next, i)
	}
	return m, nil
}

// interpolateSeed is linear between the starts of segment k and k+1.
func interpolateSeed(segs []SegmentCost, k, i int) float64 {
	cur := float64(segs[k].Seed.Nanoseconds())
	if k+1 == len(segs) {
		return cur
	}
	next := float64(segs[k+1].Seed.Nanoseconds())
	span := float64(segs[k+1].Start - segs[k].Start)
	return cur + (next-cur)*float64(i-segs[k].Start)/span
}

// blockCost is the cost of a worker seeded at start summing [start, end).
func (m *costModel) blockCost(start, end int) float64 {
	return m.seed[start] + m.prefix[end] - m.prefix[start]
}

// blockEnd returns the largest end such that [start, end) costs at most
// budget, or start when not even one term fits.
func (m *costModel) blockEnd(start int, budget float64) int {
	return start + sort.Search(m.n-start, func(k int) bool {
		return m.blockCost(start, start+k+1) > budget
	})
}

// cut greedily fills up to threads blocks of at most budget and returns
// their sizes. The last value is false when the range is not covered.
func (m *costModel) cut(threads int, budget float64) ([]int, bool) {
	sizes := make([]int, threads)
	start := 0
	for b := 0; b < threads && start < m.n; b++ {
		end := m.blockEnd(start, budget)
		if end == start {
			return sizes, false
		}
		sizes[b] = end - start
		start = end
	}
	return sizes, start == m.n
}

// balance splits the range into threads contiguous blocks minimising the
// most expensive block.
func (m *costModel) balance(threads int) []int {
	lo, hi := 0.0, m.blockCost(0, m.n)
	for range 64 {
		mid := (lo + hi) / 2
		if _, ok := m.cut(threads, mid); ok {
			hi = mid
		} else {
			lo = mid
		}
	}
	sizes, _ := m.cut(threads, hi)
	return sizes
}

// BuildRatioTable derives the cheater ratio table from p for every thread
// count up to maxThreads. Each ratio is the percentage of the iteration
// range handed to a thread.
func BuildRatioTable(p CostProfile, maxThreads int) (*partition.RatioTable, error) {
	counts := ThreadCounts(maxThreads)
	if len(counts) == 0 {
		return nil, fmt.Errorf("calibration: at least 2 threads are needed, got %d", maxThreads)
	}
	if largest := counts[len(counts)-1]; p.Iterations < largest {
		return nil, fmt.Errorf("calibration: %d iterations cannot feed %d threads; sample a higher precision",
			p.Iterations, largest)
	}
	m, err := newCostModel(p)
	if err != nil {
		return nil, err
	}

	table := partition.NewRatioTable()
	for _, threads := range counts {
		for tid, size := range m.balance(threads) {
			table.Set(threads, tid, 100*float64(size)/float64(m.n))
		}
	}
	return table, nil
}
