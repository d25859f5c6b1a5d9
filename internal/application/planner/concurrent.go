package planner

// concurrent.go: worker pool para correr varias simulaciones en paralelo.
//
// Cada simulación es pura y construye su propio estado, así que los workers
// no comparten nada mutable salvo el slice de resultados (un índice por job).

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/alejandrodnm/debtplan/internal/domain/payoff"
)

type job struct {
	debts     []domain.Debt
	budget    float64
	strategy  domain.Strategy
	maxMonths int
}

// simulateConcurrent corre los jobs y devuelve los resultados en el mismo orden.
// Si el contexto se cancela, los jobs pendientes se descartan y su resultado
// queda vacío; el caller debe revisar ctx.Err().
//
// Si workers <= 0 usa runtime.NumCPU().
func simulateConcurrent(ctx context.Context, jobs []job, workers int) []domain.PlanResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(jobs))

	results := make([]domain.PlanResult, len(jobs))
	workCh := make(chan int, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				if ctx.Err() != nil {
					continue
				}
				j := jobs[idx]
				results[idx] = payoff.Simulate(j.debts, j.budget, j.strategy, j.maxMonths, nil)
			}
		}()
	}

	for i := range jobs {
		workCh <- i
	}
	close(workCh)
	wg.Wait()

	slog.Debug("concurrent simulation complete",
		"jobs", len(jobs),
		"workers", workers,
	)
	return results
}
