package server

import (
	"sort"

	"github.com/OpenFogStack/enoki/internal/output"
)

// Stat aggregates one (function, time_type) column of a report.
type Stat struct {
	Function string  `json:"function"`
	TimeType string  `json:"time_type"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Summarize groups rows by function and time type, sorted by both.
func Summarize(rows []output.Row) []Stat {
	type key struct{ function, timeType string }

	acc := make(map[key]*Stat)
	for _, r := range rows {
		k := key{r.Function, r.TimeType}
		s, ok := acc[k]
		if !ok {
			s = &Stat{Function: r.Function, TimeType: r.TimeType, Min: r.Time, Max: r.Time}
			acc[k] = s
		}
		s.Count++
		s.Mean += r.Time
		s.Min = min(s.Min, r.Time)
		s.Max = max(s.Max, r.Time)
	}

	out := make([]Stat, 0, len(acc))
	for _, s := range acc {
		s.Mean /= float64(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Function != out[j].Function {
			return out[i].Function < out[j].Function
		}
		return out[i].TimeType < out[j].TimeType
	})
	return out
}
