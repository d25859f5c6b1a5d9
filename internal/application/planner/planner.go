// Package planner orquesta las simulaciones: resuelve deudas y presupuesto,
// corre el simulador con el evaluador de milestones, persiste y notifica.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/alejandrodnm/debtplan/internal/domain/milestone"
	"github.com/alejandrodnm/debtplan/internal/domain/payoff"
	"github.com/alejandrodnm/debtplan/internal/ports"
	"github.com/google/uuid"
)

// ErrNoDebts se devuelve cuando no hay deudas ni en el request ni en storage.
var ErrNoDebts = errors.New("no debts to plan")

// ErrInvalidBudget se devuelve para presupuestos negativos o no finitos.
var ErrInvalidBudget = errors.New("invalid monthly budget")

// Request son los parámetros de una simulación.
type Request struct {
	Debts         []domain.Debt   `json:"debts"` // vacío → deudas guardadas
	MonthlyBudget float64         `json:"monthlyBudget"`
	Strategy      domain.Strategy `json:"strategy"`
	MaxMonths     int             `json:"maxMonths"`
}

// Planner es el caso de uso principal.
type Planner struct {
	storage  ports.Storage
	notifier ports.PlanNotifier
	rules    []milestone.Rule
	workers  int
	now      func() time.Time
}

// New crea un Planner. notifier puede ser nil (modo HTTP). Sin rules se usan
// milestone.DefaultRules().
func New(storage ports.Storage, notifier ports.PlanNotifier, rules []milestone.Rule) *Planner {
	if len(rules) == 0 {
		rules = milestone.DefaultRules()
	}
	return &Planner{
		storage:  storage,
		notifier: notifier,
		rules:    rules,
		now:      time.Now,
	}
}

// SetWorkers fija el tamaño del worker pool de Sweep (0 = NumCPU).
func (p *Planner) SetWorkers(n int) {
	p.workers = n
}

// Plan simula, registra milestones nuevos, persiste el run y lo notifica.
func (p *Planner) Plan(ctx context.Context, req Request) (domain.PlanRun, error) {
	strategy, err := domain.ParseStrategy(string(req.Strategy))
	if err != nil {
		return domain.PlanRun{}, fmt.Errorf("planner.Plan: %w", err)
	}
	req.Strategy = strategy

	debts, err := p.resolveDebts(ctx, req)
	if err != nil {
		return domain.PlanRun{}, fmt.Errorf("planner.Plan: %w", err)
	}
	if err := checkBudget(req.MonthlyBudget); err != nil {
		return domain.PlanRun{}, fmt.Errorf("planner.Plan: %w", err)
	}

	unlocked, err := p.storage.LoadUnlocked(ctx)
	if err != nil {
		return domain.PlanRun{}, fmt.Errorf("planner.Plan: %w", err)
	}

	eval := milestone.NewEvaluator(p.rules, debts, unlocked)
	res := payoff.Simulate(debts, req.MonthlyBudget, req.Strategy, req.MaxMonths, eval.Evaluate)

	run := domain.PlanRun{
		ID:            uuid.New().String(),
		CreatedAt:     p.now().UTC(),
		Strategy:      req.Strategy,
		MonthlyBudget: req.MonthlyBudget,
		MaxMonths:     effectiveMaxMonths(req.MaxMonths),
		Result:        res,
	}

	slog.Info("plan simulated",
		"run_id", run.ID,
		"strategy", run.Strategy,
		"budget", run.MonthlyBudget,
		"debts", len(debts),
		"months", res.Months,
		"interest", res.TotalInterest,
		"status", res.Status,
	)

	if err := p.storage.SavePlan(ctx, run); err != nil {
		return domain.PlanRun{}, fmt.Errorf("planner.Plan: %w", err)
	}
	if newly := res.Milestones(); len(newly) > 0 {
		if err := p.storage.SaveUnlocked(ctx, eval.Unlocked()); err != nil {
			return domain.PlanRun{}, fmt.Errorf("planner.Plan: %w", err)
		}
		slog.Info("milestones unlocked", "run_id", run.ID, "labels", newly)
	}

	if p.notifier != nil {
		if err := p.notifier.NotifyPlan(ctx, run, debts); err != nil {
			slog.Warn("notify plan failed", "run_id", run.ID, "err", err)
		}
	}
	return run, nil
}

// Preview simula sin storage, milestones ni notificación. Las deudas deben
// venir en el request.
func (p *Planner) Preview(req Request) (domain.PlanResult, error) {
	strategy, err := domain.ParseStrategy(string(req.Strategy))
	if err != nil {
		return domain.PlanResult{}, fmt.Errorf("planner.Preview: %w", err)
	}
	req.Strategy = strategy

	if err := checkRequest(req); err != nil {
		return domain.PlanResult{}, fmt.Errorf("planner.Preview: %w", err)
	}
	return payoff.Simulate(req.Debts, req.MonthlyBudget, req.Strategy, req.MaxMonths, nil), nil
}

// Compare corre ambas estrategias en paralelo y notifica el resultado.
func (p *Planner) Compare(ctx context.Context, req Request) (domain.Comparison, error) {
	debts, err := p.resolveDebts(ctx, req)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("planner.Compare: %w", err)
	}
	if err := checkBudget(req.MonthlyBudget); err != nil {
		return domain.Comparison{}, fmt.Errorf("planner.Compare: %w", err)
	}

	results := simulateConcurrent(ctx, []job{
		{debts: debts, budget: req.MonthlyBudget, strategy: domain.Snowball, maxMonths: req.MaxMonths},
		{debts: debts, budget: req.MonthlyBudget, strategy: domain.Avalanche, maxMonths: req.MaxMonths},
	}, 2)
	if err := ctx.Err(); err != nil {
		return domain.Comparison{}, fmt.Errorf("planner.Compare: %w", err)
	}

	cmp := payoff.NewComparison(req.MonthlyBudget, results[0], results[1])
	slog.Info("strategies compared",
		"budget", cmp.MonthlyBudget,
		"interest_saved", cmp.InterestSaved,
		"months_saved", cmp.MonthsSaved,
		"recommended", cmp.Recommended,
	)

	if p.notifier != nil {
		if err := p.notifier.NotifyComparison(ctx, cmp); err != nil {
			slog.Warn("notify comparison failed", "err", err)
		}
	}
	return cmp, nil
}

// Import valida el portafolio y guarda sus deudas (y, con includeBNPL, sus
// planes BNPL convertidos a deuda). Devuelve cuántas deudas guardó.
func (p *Planner) Import(ctx context.Context, portfolio domain.Portfolio, includeBNPL bool) (int, error) {
	if err := portfolio.Validate(); err != nil {
		return 0, fmt.Errorf("planner.Import: %w", err)
	}
	debts := portfolio.PayoffDebts(includeBNPL)
	if err := p.storage.UpsertDebts(ctx, debts); err != nil {
		return 0, fmt.Errorf("planner.Import: %w", err)
	}
	slog.Info("portfolio imported",
		"debts", len(portfolio.Debts),
		"bnpl", len(portfolio.BNPL),
		"stored", len(debts),
		"include_bnpl", includeBNPL,
	)
	return len(debts), nil
}

// GetPlan devuelve un run guardado.
func (p *Planner) GetPlan(ctx context.Context, id string) (domain.PlanRun, error) {
	run, err := p.storage.GetPlan(ctx, id)
	if err != nil {
		return domain.PlanRun{}, fmt.Errorf("planner.GetPlan: %w", err)
	}
	return run, nil
}

// History devuelve los últimos runs, más recientes primero.
func (p *Planner) History(ctx context.Context, limit int) ([]domain.PlanRun, error) {
	runs, err := p.storage.ListPlans(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("planner.History: %w", err)
	}
	return runs, nil
}

// Debts devuelve las deudas guardadas.
func (p *Planner) Debts(ctx context.Context) ([]domain.Debt, error) {
	debts, err := p.storage.ListDebts(ctx)
	if err != nil {
		return nil, fmt.Errorf("planner.Debts: %w", err)
	}
	return debts, nil
}

// --- helpers internos ---

func (p *Planner) resolveDebts(ctx context.Context, req Request) ([]domain.Debt, error) {
	debts := req.Debts
	if len(debts) == 0 {
		stored, err := p.storage.ListDebts(ctx)
		if err != nil {
			return nil, err
		}
		debts = stored
	}
	if len(debts) == 0 {
		return nil, ErrNoDebts
	}
	if err := domain.ValidateDebts(debts); err != nil {
		return nil, err
	}
	return debts, nil
}

func checkRequest(req Request) error {
	if len(req.Debts) == 0 {
		return ErrNoDebts
	}
	if err := domain.ValidateDebts(req.Debts); err != nil {
		return err
	}
	return checkBudget(req.MonthlyBudget)
}

func checkBudget(b float64) error {
	// NaN falla ambas comparaciones
	if !(b >= 0) || b > 1e12 {
		return fmt.Errorf("%w: %v", ErrInvalidBudget, b)
	}
	return nil
}

func effectiveMaxMonths(n int) int {
	if n <= 0 {
		return payoff.DefaultMaxMonths
	}
	return n
}
