package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/alejandrodnm/debtplan/internal/domain"
)

// Sweep simula la misma cartera con varios presupuestos (what-if) usando el
// worker pool. Los puntos vuelven ordenados por presupuesto ascendente.
func (p *Planner) Sweep(ctx context.Context, req Request, budgets []float64) ([]domain.SweepPoint, error) {
	strategy, err := domain.ParseStrategy(string(req.Strategy))
	if err != nil {
		return nil, fmt.Errorf("planner.Sweep: %w", err)
	}
	debts, err := p.resolveDebts(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("planner.Sweep: %w", err)
	}

	sorted := append([]float64(nil), budgets...)
	sort.Float64s(sorted)

	jobs := make([]job, 0, len(sorted))
	for _, b := range sorted {
		if err := checkBudget(b); err != nil {
			return nil, fmt.Errorf("planner.Sweep: %w", err)
		}
		jobs = append(jobs, job{debts: debts, budget: b, strategy: strategy, maxMonths: req.MaxMonths})
	}

	results := simulateConcurrent(ctx, jobs, p.workers)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("planner.Sweep: %w", err)
	}

	points := make([]domain.SweepPoint, len(results))
	for i, r := range results {
		points[i] = domain.SweepPoint{
			MonthlyBudget: sorted[i],
			Months:        r.Months,
			TotalInterest: r.TotalInterest,
			Status:        r.Status,
		}
	}

	slog.Debug("budget sweep complete", "strategy", strategy, "points", len(points))
	return points, nil
}

// SweepBudgets genera n presupuestos desde base en incrementos de step.
func SweepBudgets(base, step float64, n int) []float64 {
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Round2(base+float64(i)*step))
	}
	return out
}
