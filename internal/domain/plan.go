package domain

import (
	"maps"
	"slices"
	"time"
)

// InfeasibleLabel es la etiqueta de diagnóstico del paso sintético cuando el
// presupuesto no cubre la suma de pagos mínimos.
const InfeasibleLabel = "Budget < sum(min payments): increase payoff budget or renegotiate mins"

// PlanStatus distingue un plan terminado de uno cortado por el tope de meses.
type PlanStatus string

const (
	StatusCompleted  PlanStatus = "completed"
	StatusCapped     PlanStatus = "capped"
	StatusInfeasible PlanStatus = "infeasible"
)

// PlanStep es un mes simulado. Inmutable una vez emitido.
type PlanStep struct {
	Month          int                `json:"month"`
	Balances       map[string]float64 `json:"balances"` // redondeados a 2 decimales
	Payment        float64            `json:"payment"`
	Interest       float64            `json:"interest"`
	Principal      float64            `json:"principal"`
	TargetID       string             `json:"targetId"`
	UnlockedBadges []string           `json:"unlockedBadges,omitempty"`
}

// Clone devuelve una copia profunda del paso.
func (s PlanStep) Clone() PlanStep {
	c := s
	c.Balances = maps.Clone(s.Balances)
	c.UnlockedBadges = slices.Clone(s.UnlockedBadges)
	return c
}

// PlanResult es el resultado final de una simulación.
// Months == 0 con Status infeasible señala presupuesto insuficiente, no "ya pagado".
type PlanResult struct {
	Months        int        `json:"months"`
	TotalInterest float64    `json:"totalInterest"`
	Schedule      []PlanStep `json:"schedule"`
	Status        PlanStatus `json:"status"`
}

// Completed devuelve true si todas las deudas quedaron en cero.
func (r PlanResult) Completed() bool {
	return r.Status == StatusCompleted
}

// FinalBalances devuelve los balances del último paso (nil si no hay pasos).
func (r PlanResult) FinalBalances() map[string]float64 {
	if len(r.Schedule) == 0 {
		return nil
	}
	return r.Schedule[len(r.Schedule)-1].Balances
}

// PayoffMonth devuelve el primer mes en que la deuda id queda en cero, o 0 si nunca.
func (r PlanResult) PayoffMonth(id string) int {
	for _, s := range r.Schedule {
		if s.Month == 0 {
			continue
		}
		if b, ok := s.Balances[id]; ok && b == 0 {
			return s.Month
		}
	}
	return 0
}

// TotalPaid suma los pagos de todos los meses.
func (r PlanResult) TotalPaid() float64 {
	var total float64
	for _, s := range r.Schedule {
		total += s.Payment
	}
	return Round2(total)
}

// Milestones devuelve todas las etiquetas desbloqueadas en orden de aparición.
func (r PlanResult) Milestones() []string {
	if r.Status == StatusInfeasible {
		return nil // el paso sintético solo lleva el diagnóstico
	}
	var out []string
	for _, s := range r.Schedule {
		out = append(out, s.UnlockedBadges...)
	}
	return out
}

// PlanRun es una simulación persistida junto con sus parámetros.
type PlanRun struct {
	ID            string     `json:"id"`
	CreatedAt     time.Time  `json:"createdAt"`
	Strategy      Strategy   `json:"strategy"`
	MonthlyBudget float64    `json:"monthlyBudget"`
	MaxMonths     int        `json:"maxMonths"`
	Result        PlanResult `json:"result"`
}

// StrategySummary resume una estrategia para la comparación.
type StrategySummary struct {
	Strategy      Strategy   `json:"strategy"`
	Months        int        `json:"months"`
	TotalInterest float64    `json:"totalInterest"`
	Status        PlanStatus `json:"status"`
}

// Comparison enfrenta snowball contra avalanche con las mismas deudas y presupuesto.
type Comparison struct {
	MonthlyBudget float64         `json:"monthlyBudget"`
	Snowball      StrategySummary `json:"snowball"`
	Avalanche     StrategySummary `json:"avalanche"`
	InterestSaved float64         `json:"interestSaved"` // snowball - avalanche, >= 0
	MonthsSaved   int             `json:"monthsSaved"`   // snowball - avalanche
	Recommended   Strategy        `json:"recommended"`
}

// Summarize reduce un resultado a su resumen.
func Summarize(strategy Strategy, r PlanResult) StrategySummary {
	return StrategySummary{
		Strategy:      strategy,
		Months:        r.Months,
		TotalInterest: r.TotalInterest,
		Status:        r.Status,
	}
}

// SweepPoint es el resultado de un presupuesto dentro de un barrido what-if.
type SweepPoint struct {
	MonthlyBudget float64    `json:"monthlyBudget"`
	Months        int        `json:"months"`
	TotalInterest float64    `json:"totalInterest"`
	Status        PlanStatus `json:"status"`
}
