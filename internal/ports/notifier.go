package ports

import (
	"context"

	"github.com/alejandrodnm/debtplan/internal/domain"
)

// PlanNotifier presenta los planes al usuario.
type PlanNotifier interface {
	// NotifyPlan muestra una simulación. debts aporta los nombres para las tablas.
	NotifyPlan(ctx context.Context, run domain.PlanRun, debts []domain.Debt) error

	// NotifyComparison muestra snowball vs avalanche.
	NotifyComparison(ctx context.Context, c domain.Comparison) error
}
