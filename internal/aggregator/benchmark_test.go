package aggregator

import (
	"fmt"
	"testing"

	"github.com/OpenFogStack/enoki/internal/model"
)

// BenchmarkApply measures replay cost with recompute-on-every-event.
func BenchmarkApply(b *testing.B) {
	ops := make([]model.Operation, 0, 6000)
	for i := 0; i < 1000; i++ {
		x := fmt.Sprintf("x%d", i)
		ops = append(ops,
			mkop(i, "f", x, x, "start"),
			mkop(i+1, "f", x+"c", x, "start-call-g"),
			mkop(i+2, "f", x+"c", x, "end-call-g"),
			mkop(i+3, "f", x+"d", x, "start-db-get"),
			mkop(i+4, "f", x+"d", x, "end-db-get"),
			mkop(i+5, "f", x, x, "end"),
		)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		a := New("")
		for _, op := range ops {
			_ = a.Apply(op)
		}
	}
}
