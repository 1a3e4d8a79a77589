package ladder

import (
	"testing"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

func TestPAV_PoolingLaw(t *testing.T) {
	// Property #4: [0.8, 0.4, 0.6, 0.3, 0.1] nonincreasing -> indices 1,2
	// pool to 0.5.
	out := PAV([]float64{0.8, 0.4, 0.6, 0.3, 0.1}, domain.DirectionNonincreasing)
	if out[1] != 0.5 || out[2] != 0.5 {
		t.Fatalf("out = %v, want indices 1,2 = 0.5", out)
	}
}

func TestPAV_Monotone(t *testing.T) {
	out := PAV([]float64{0.9, 0.95, 0.3, 0.85, 0.1}, domain.DirectionNonincreasing)
	for i := 1; i < len(out); i++ {
		if out[i] > out[i-1] {
			t.Fatalf("output not non-increasing at %d: %v", i, out)
		}
		if out[i] < 0 || out[i] > 1 {
			t.Fatalf("output out of [0,1] at %d: %v", i, out[i])
		}
	}
}

func TestPAV_Idempotent(t *testing.T) {
	in := []float64{0.8, 0.4, 0.6, 0.3, 0.1}
	once := PAV(in, domain.DirectionNonincreasing)
	twice := PAV(once, domain.DirectionNonincreasing)
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("PAV not idempotent at %d: once=%v twice=%v", i, once[i], twice[i])
		}
	}
}

func TestPAV_AlreadyMonotoneIsUnchanged(t *testing.T) {
	in := []float64{0.9, 0.7, 0.5, 0.3}
	out := PAV(in, domain.DirectionNonincreasing)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %v, want unchanged %v", i, out[i], in[i])
		}
	}
}

func TestPAV_Nondecreasing(t *testing.T) {
	out := PAV([]float64{0.1, 0.5, 0.3, 0.6, 0.9}, domain.DirectionNondecreasing)
	for i := 1; i < len(out); i++ {
		if out[i] < out[i-1] {
			t.Fatalf("output not non-decreasing at %d: %v", i, out)
		}
	}
}
