package main

import (
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/bumperfield/internal/ecs"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Bumpers  int
	Seed     uint64
	Substeps int

	// Results
	TotalUpdates  int64
	TotalTime     time.Duration
	SimulatedTime time.Duration
	UpdateTime    Stats
	ContactEvents int
	Bumps         int
	Sounds        int
	Reseeds       int
	Draws         int
	ReseedDraws   int
	Systems       []ecs.SystemStats
	World         *ecs.StorageStats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]
	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

const reportTemplate = `
# Bumperfield Stress Report

## Configuration
- **Run Duration:** {{.Duration}}
- **Bumpers:** {{.Bumpers}}
- **Seed:** {{.Seed}}
- **Physics Substeps:** {{.Substeps}}

## Simulation
- **Ticks:** {{.TotalUpdates}} ({{.SimulatedTime}} simulated in {{.TotalTime}})
- **Contact Events:** {{.ContactEvents}}
- **Bumper Hits:** {{.Bumps}} ({{.Sounds}} tones played)
- **Reseeds:** {{.Reseeds}}
- **Placement Draws:** {{.Draws}} (first field), {{.ReseedDraws}} (last field)
{{with .World}}- **Entities:** {{.TotalEntityCount}} in {{.ArchetypeCount}} archetypes{{end}}

## Update Time (Frame)
- **Avg:** {{.UpdateTime.Avg}}
- **Min:** {{.UpdateTime.Min}}
- **Max:** {{.UpdateTime.Max}}

## Systems
| System | Runs | Avg | Min | Max |
| --- | --- | --- | --- | --- |
{{range .Systems}}| {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MinDuration}} | {{.MaxDuration}} |
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:  {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc: {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:      {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
- GC Pause:    {{ns .MemStatsEnd.PauseTotalNs}}
`

func (r *Report) Generate(w io.Writer) error {
	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}
