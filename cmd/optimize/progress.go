package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// formatDuration formats a duration as 1h02m03s, or 2m03s below an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// progress records every evaluation to optimize_log.csv, prints an ETA line
// and remembers the best parameters seen.
type progress struct {
	f         *os.File
	w         *csv.Writer
	params    *ParamVector
	evaluator *FitnessEvaluator
	maxEvals  int

	start       time.Time
	evals       int
	bestFitness float64
	bestParams  []float64
}

func newProgress(path string, params *ParamVector, evaluator *FitnessEvaluator, maxEvals int) (*progress, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}
	p := &progress{
		f:           f,
		w:           csv.NewWriter(f),
		params:      params,
		evaluator:   evaluator,
		maxEvals:    maxEvals,
		start:       time.Now(),
		bestFitness: 1e18,
	}

	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := p.w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing log header: %w", err)
	}
	return p, nil
}

// wrap returns an objective that evaluates x via fn and records the result.
// x is in normalized [0,1] space.
func (p *progress) wrap(fn func(x []float64) float64) func(x []float64) float64 {
	return func(x []float64) float64 {
		fitness := fn(x)
		p.record(p.params.Clamp(p.params.Denormalize(x)), fitness)
		return fitness
	}
}

func (p *progress) record(raw []float64, fitness float64) {
	p.evals++
	if fitness < p.bestFitness {
		p.bestFitness = fitness
		p.bestParams = raw
	}

	quality := p.evaluator.LastQuality()
	row := []string{strconv.Itoa(p.evals), strconv.FormatFloat(fitness, 'f', 6, 64), strconv.FormatFloat(quality, 'f', 4, 64)}
	for _, v := range raw {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	p.w.Write(row)
	p.w.Flush()

	elapsed := time.Since(p.start)
	remaining := time.Duration(p.maxEvals-p.evals) * (elapsed / time.Duration(p.evals))
	survived := -fitness / (1.0 + 0.2*quality)
	fmt.Printf("Eval %d/%d: survived=%.0f gens quality=%.2f (best=%.0f) | elapsed: %s, ETA: %s\n",
		p.evals, p.maxEvals, survived, quality, p.bestFitness,
		formatDuration(elapsed), formatDuration(remaining))
}

func (p *progress) close() error {
	p.w.Flush()
	if err := p.w.Error(); err != nil {
		p.f.Close()
		return err
	}
	return p.f.Close()
}
