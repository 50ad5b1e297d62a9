package testkit

import (
	"math"
	"math/rand"

	"gokinet/adapters/ingest"
	"gokinet/domain/kinetics"
)

// GeneratorConfig configures the synthetic kinetic data generator
type GeneratorConfig struct {
	Times       []float64 // Sampling grid in minutes
	RateK1      float64   // True PFO rate constant
	InitialConc float64   // A0
	NoiseLevel  float64   // Relative multiplicative noise
	Seed        int64
}

// DefaultGeneratorConfig returns the sampling grid and constants of the
// reference dataset
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Times:       []float64{0, 2, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60},
		RateK1:      0.05,
		InitialConc: 100,
		NoiseLevel:  0.02,
		Seed:        42,
	}
}

// Generator produces noisy pseudo-first-order decay data
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a seeded generator
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Series generates a validated series directly, bypassing ingestion
func (g *Generator) Series(sourceName string) *kinetics.Series {
	points := make([]kinetics.Point, 0, len(g.config.Times))
	for _, t := range g.config.Times {
		conc := g.concAt(t)
		ratio := conc / g.config.InitialConc
		points = append(points, kinetics.Point{
			Time:        t,
			Conc:        conc,
			InitialConc: g.config.InitialConc,
			Ratio:       ratio,
			LnRatio:     math.Log(ratio),
			InvConc:     1 / conc,
		})
	}
	return &kinetics.Series{SourceName: sourceName, Points: points}
}

// Table generates a raw table as ingestion would produce it, useful for
// exercising the full pipeline
func (g *Generator) Table() *ingest.RawTable {
	table := &ingest.RawTable{
		Headers: []string{"time_min", "conc", "conc0", "ratio"},
	}
	for _, t := range g.config.Times {
		conc := g.concAt(t)
		table.Rows = append(table.Rows, ingest.RawRow{
			"time_min": formatCell(t, 1),
			"conc":     formatCell(conc, 4),
			"conc0":    formatCell(g.config.InitialConc, 4),
			"ratio":    formatCell(conc/g.config.InitialConc, 6),
		})
	}
	return table
}

// concAt simulates one noisy measurement of A at time t
func (g *Generator) concAt(t float64) float64 {
	ideal := g.config.InitialConc * math.Exp(-g.config.RateK1*t)
	measured := ideal * (1 + g.rng.NormFloat64()*g.config.NoiseLevel)
	// Clamp away from zero so log and inverse transforms stay defined
	if measured < 0.1 {
		measured = 0.1
	}
	return measured
}
