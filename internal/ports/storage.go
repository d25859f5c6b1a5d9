package ports

import (
	"context"
	"errors"

	"github.com/alejandrodnm/debtplan/internal/domain"
)

// ErrNotFound se devuelve cuando el registro pedido no existe.
var ErrNotFound = errors.New("not found")

// DebtStorage persiste el portafolio de deudas que alimenta al simulador.
type DebtStorage interface {
	// UpsertDebts inserta o actualiza las deudas por id.
	UpsertDebts(ctx context.Context, debts []domain.Debt) error

	// ListDebts devuelve todas las deudas ordenadas por id.
	ListDebts(ctx context.Context) ([]domain.Debt, error)

	// DeleteDebt elimina una deuda. ErrNotFound si no existe.
	DeleteDebt(ctx context.Context, id string) error
}

// PlanStorage persiste las simulaciones y los milestones ya desbloqueados.
type PlanStorage interface {
	SavePlan(ctx context.Context, run domain.PlanRun) error

	// GetPlan devuelve la simulación con su schedule completo. ErrNotFound si no existe.
	GetPlan(ctx context.Context, id string) (domain.PlanRun, error)

	// ListPlans devuelve las últimas simulaciones (más recientes primero) sin schedule.
	ListPlans(ctx context.Context, limit int) ([]domain.PlanRun, error)

	// LoadUnlocked devuelve los ids de milestones desbloqueados en runs anteriores.
	LoadUnlocked(ctx context.Context) ([]string, error)

	// SaveUnlocked registra ids desbloqueados. Los ya existentes se ignoran.
	SaveUnlocked(ctx context.Context, ids []string) error
}

// Storage agrupa deudas y planes sobre la misma base de datos.
type Storage interface {
	DebtStorage
	PlanStorage

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
