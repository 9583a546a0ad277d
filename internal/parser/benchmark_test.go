package parser

import (
	"fmt"
	"testing"
)

// BenchmarkHeaderParserPerf measures parsing of performance records.
func BenchmarkHeaderParserPerf(b *testing.B) {
	p := NewHeaderParser()
	line := "function=movementplan handler=h1 stream=stdout 2023-08-23T09:16:15.408602142Z " +
		"BEFAAS;2023-08-23T09:16:15.409000+00:00;movementplan;p1;e1;c1;start-db-get"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(line)
	}
}

// BenchmarkHeaderParserThroughput measures sustained lines/sec over a mixed batch.
func BenchmarkHeaderParserThroughput(b *testing.B) {
	p := NewHeaderParser()

	lines := make([]string, 1000)
	for i := range lines {
		switch i % 3 {
		case 0:
			lines[i] = fmt.Sprintf("function=f handler=h stream=stdout 2024-01-10T10:00:00Z BEFAAS;2024-01-10T10:00:00.%06d+00:00;f;p%d;e%d;c;start", i, i, i)
		case 1:
			lines[i] = fmt.Sprintf("function=f handler=h stream=stdout 2024-01-10T10:00:00Z DEBUG;2024-01-10T10:00:00Z;f;'request %d'", i)
		case 2:
			lines[i] = fmt.Sprintf("function=f handler=h stream=stderr 2024-01-10T10:00:00Z warning %d", i)
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = p.Parse(lines[i%1000])
	}
}
