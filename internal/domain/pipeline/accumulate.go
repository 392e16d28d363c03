package pipeline

import "math"

// Accumulator tracks count, sum, min and max of a numeric series.
type Accumulator struct {
	Count int
	Sum   float64
	Min   float64
	Max   float64
}

// Add folds v into the accumulator.
func (a *Accumulator) Add(v float64) {
	if a.Count == 0 || v < a.Min {
		a.Min = v
	}
	if a.Count == 0 || v > a.Max {
		a.Max = v
	}
	a.Count++
	a.Sum += v
}

// Avg returns the arithmetic mean, or 0 for an empty series.
func (a Accumulator) Avg() float64 {
	return Ratio(a.Sum, float64(a.Count))
}

// Buckets is an incremental histogram over half-open ranges
// [b[i], b[i+1]); the last range is open-ended. Values below the first
// boundary are not counted.
type Buckets struct {
	bounds []int
	counts []int
}

// NewBuckets creates a histogram over ascending boundaries.
func NewBuckets(boundaries []int) *Buckets {
	return &Buckets{bounds: boundaries, counts: make([]int, len(boundaries))}
}

// Add counts v in its bucket.
func (b *Buckets) Add(v int) {
	for i := len(b.bounds) - 1; i >= 0; i-- {
		if v >= b.bounds[i] {
			b.counts[i]++
			return
		}
	}
}

// Counts returns the per-bucket counts aligned with the boundaries.
func (b *Buckets) Counts() []int {
	out := make([]int, len(b.counts))
	copy(out, b.counts)
	return out
}

// Bucketize returns histogram counts of values over boundaries.
func Bucketize(values []int, boundaries []int) []int {
	b := NewBuckets(boundaries)
	for _, v := range values {
		b.Add(v)
	}
	return b.Counts()
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundInt rounds to the nearest integer, half away from zero.
func RoundInt(v float64) int {
	return int(math.Round(v))
}

// Ratio returns num/den, or 0 when den is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
