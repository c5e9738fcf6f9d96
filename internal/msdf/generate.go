package msdf

import (
	"github.com/gogpu/ink/internal/edge"
	"github.com/gogpu/ink/internal/parallel"
)

// Result is the output of one Seed→JFA→Encode sequence.
type Result struct {
	Field *Field

	// Seeds is the converged seed field, nil when the exact path ran.
	Seeds *SeedField

	// Iterations is the number of JFA steps executed.
	Iterations int
}

// Generate runs the full distance-field sequence for buf. When p.Exact is
// set the seed and JFA passes are skipped and every texel scans every edge.
// A nil pool uses parallel.Default.
func Generate(pool *parallel.WorkerPool, buf *edge.Buffer, p Params) Result {
	if pool == nil {
		pool = parallel.Default()
	}
	if p.Exact {
		return Result{Field: Encode(pool, buf, nil, p)}
	}

	a := NewSeedField(buf.Width, buf.Height)
	b := NewSeedField(buf.Width, buf.Height)
	SeedInit(buf, a)
	seeds := JFA(pool, a, b)
	return Result{
		Field:      Encode(pool, buf, seeds, p),
		Seeds:      seeds,
		Iterations: Iterations(buf.Width, buf.Height),
	}
}
