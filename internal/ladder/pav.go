package ladder

import "github.com/alanyoungcy/analyticscore/internal/domain"

// pavBlock is a pooled run of one or more original values, tracked with its
// weighted-average value so later merges combine correctly.
type pavBlock struct {
	value  float64
	weight float64
	count  int
}

// poolAdjacentViolatorsNonIncreasing runs PAV for a non-increasing target: a
// left-to-right sweep that pools adjacent blocks whenever an earlier block's
// value is less than a later one's, re-checking leftward after each pool
// until the whole sequence is non-increasing (spec §4.6).
func poolAdjacentViolatorsNonIncreasing(y []float64) []float64 {
	if len(y) == 0 {
		return nil
	}

	blocks := make([]pavBlock, 0, len(y))
	for _, v := range y {
		blocks = append(blocks, pavBlock{value: v, weight: 1, count: 1})
		for len(blocks) >= 2 && blocks[len(blocks)-2].value < blocks[len(blocks)-1].value {
			b2 := blocks[len(blocks)-1]
			b1 := blocks[len(blocks)-2]
			merged := pavBlock{
				value:  (b1.value*b1.weight + b2.value*b2.weight) / (b1.weight + b2.weight),
				weight: b1.weight + b2.weight,
				count:  b1.count + b2.count,
			}
			blocks = blocks[:len(blocks)-2]
			blocks = append(blocks, merged)
		}
	}

	out := make([]float64, 0, len(y))
	for _, b := range blocks {
		for i := 0; i < b.count; i++ {
			out = append(out, b.value)
		}
	}

	// Defensive propagate pass (spec §4.6): forces strict non-increase in
	// case of floating-point drift across pooled blocks. A no-op on a
	// correctly pooled sequence.
	for j := 1; j < len(out); j++ {
		if out[j] > out[j-1] {
			out[j] = out[j-1]
		}
	}

	return out
}

// PAV fits an isotonic curve to y in the given direction, clipped to [0,1].
// For DirectionNondecreasing, inputs are negated, the non-increasing solver
// runs, and the output is negated back (spec §4.6).
func PAV(y []float64, dir domain.Direction) []float64 {
	if dir == domain.DirectionNondecreasing {
		neg := make([]float64, len(y))
		for i, v := range y {
			neg[i] = -v
		}
		fitted := poolAdjacentViolatorsNonIncreasing(neg)
		out := make([]float64, len(fitted))
		for i, v := range fitted {
			out[i] = clip01(-v)
		}
		return out
	}

	fitted := poolAdjacentViolatorsNonIncreasing(y)
	out := make([]float64, len(fitted))
	for i, v := range fitted {
		out[i] = clip01(v)
	}
	return out
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
