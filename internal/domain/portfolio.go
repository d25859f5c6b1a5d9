package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidPortfolio envuelve todos los errores de validación de importación.
var ErrInvalidPortfolio = errors.New("invalid portfolio")

// Cadence es la periodicidad de una transacción recurrente.
type Cadence string

const (
	CadenceWeekly    Cadence = "weekly"
	CadenceBiweekly  Cadence = "biweekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceYearly    Cadence = "yearly"
)

// MonthlyFactor convierte un monto de esta cadencia a equivalente mensual.
func (c Cadence) MonthlyFactor() float64 {
	switch c {
	case CadenceWeekly:
		return 52.0 / 12
	case CadenceBiweekly:
		return 26.0 / 12
	case CadenceQuarterly:
		return 1.0 / 3
	case CadenceYearly:
		return 1.0 / 12
	default:
		return 1
	}
}

func (c Cadence) valid() bool {
	switch c {
	case CadenceWeekly, CadenceBiweekly, CadenceMonthly, CadenceQuarterly, CadenceYearly:
		return true
	}
	return false
}

// Budget es una categoría de presupuesto mensual.
type Budget struct {
	ID        string  `json:"id" yaml:"id"`
	Category  string  `json:"category" yaml:"category"`
	Allocated float64 `json:"allocated" yaml:"allocated"`
	Spent     float64 `json:"spent" yaml:"spent"`
}

// BNPLPlan es un plan buy-now-pay-later en cuotas.
type BNPLPlan struct {
	ID          string   `json:"id" yaml:"id"`
	Provider    string   `json:"provider" yaml:"provider"` // PayPal | Affirm | Klarna
	Description string   `json:"description" yaml:"description"`
	Total       float64  `json:"total" yaml:"total"`
	Remaining   float64  `json:"remaining" yaml:"remaining"`
	DueDates    []string `json:"dueDates" yaml:"dueDates"` // ISO YYYY-MM-DD
	APR         *float64 `json:"apr,omitempty" yaml:"apr,omitempty"`
}

// RecurringTransaction es un ingreso o gasto periódico.
type RecurringTransaction struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Type    string  `json:"type" yaml:"type"` // income | expense
	Amount  float64 `json:"amount" yaml:"amount"`
	Cadence Cadence `json:"cadence" yaml:"cadence"`
}

// Goal es una meta de ahorro.
type Goal struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Target   float64 `json:"target" yaml:"target"`
	Current  float64 `json:"current" yaml:"current"`
	Due      string  `json:"due,omitempty" yaml:"due,omitempty"`
	Priority *int    `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Portfolio es el payload de importación completo.
type Portfolio struct {
	Budgets   []Budget               `json:"budgets" yaml:"budgets"`
	Debts     []Debt                 `json:"debts" yaml:"debts"`
	BNPL      []BNPLPlan             `json:"bnpl" yaml:"bnpl"`
	Recurring []RecurringTransaction `json:"recurring" yaml:"recurring"`
	Goals     []Goal                 `json:"goals" yaml:"goals"`
}

// DebtBudgetCategory es la categoría cuyo monto asignado alimenta el presupuesto de pago.
const DebtBudgetCategory = "Debt"

// Validate aplica los chequeos de tipo/enum por campo. Devuelve un error que
// envuelve ErrInvalidPortfolio con todos los problemas encontrados.
func (p Portfolio) Validate() error {
	errs := debtErrors(p.Debts)
	debtIDs := make(map[string]bool, len(p.Debts))
	for _, d := range p.Debts {
		debtIDs[d.ID] = true
	}

	for i, b := range p.Budgets {
		path := fmt.Sprintf("budgets[%d]", i)
		errs = append(errs,
			checkID(path, b.ID),
			checkText(path+".category", b.Category),
			checkAmount(path+".allocated", b.Allocated),
			checkAmount(path+".spent", b.Spent),
		)
	}

	for i, b := range p.BNPL {
		path := fmt.Sprintf("bnpl[%d]", i)
		errs = append(errs,
			checkID(path, b.ID),
			checkAmount(path+".total", b.Total),
			checkAmount(path+".remaining", b.Remaining),
		)
		if debtIDs[b.ID] {
			// los planes BNPL pueden entrar al simulador junto a las deudas
			errs = append(errs, fmt.Errorf("%s.id: %q collides with a debt id", path, b.ID))
		}
		switch b.Provider {
		case "PayPal", "Affirm", "Klarna":
		default:
			errs = append(errs, fmt.Errorf("%s.provider: unsupported %q", path, b.Provider))
		}
		if b.APR != nil {
			errs = append(errs, checkAmount(path+".apr", *b.APR))
		}
		for j, d := range b.DueDates {
			errs = append(errs, checkDate(fmt.Sprintf("%s.dueDates[%d]", path, j), d))
		}
	}

	for i, r := range p.Recurring {
		path := fmt.Sprintf("recurring[%d]", i)
		errs = append(errs,
			checkID(path, r.ID),
			checkText(path+".name", r.Name),
			checkAmount(path+".amount", r.Amount),
		)
		if r.Type != "income" && r.Type != "expense" {
			errs = append(errs, fmt.Errorf("%s.type: unsupported %q", path, r.Type))
		}
		if !r.Cadence.valid() {
			errs = append(errs, fmt.Errorf("%s.cadence: unsupported %q", path, r.Cadence))
		}
	}

	for i, g := range p.Goals {
		path := fmt.Sprintf("goals[%d]", i)
		errs = append(errs,
			checkID(path, g.ID),
			checkText(path+".name", g.Name),
			checkAmount(path+".target", g.Target),
			checkAmount(path+".current", g.Current),
		)
		if g.Due != "" {
			errs = append(errs, checkDate(path+".due", g.Due))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPortfolio, err)
	}
	return nil
}

// DebtBudget devuelve el monto asignado a la categoría "Debt", si existe.
func (p Portfolio) DebtBudget() (float64, bool) {
	for _, b := range p.Budgets {
		if strings.EqualFold(b.Category, DebtBudgetCategory) {
			return b.Allocated, true
		}
	}
	return 0, false
}

// MonthlyNet devuelve ingresos menos gastos recurrentes, normalizado a un mes.
func (p Portfolio) MonthlyNet() float64 {
	var net float64
	for _, r := range p.Recurring {
		amt := r.Amount * r.Cadence.MonthlyFactor()
		if r.Type == "income" {
			net += amt
		} else {
			net -= amt
		}
	}
	return Round2(net)
}

// PayoffDebts devuelve las deudas a simular. Con includeBNPL, cada plan BNPL con
// saldo pendiente entra como deuda: mínimo = pendiente / cuotas restantes.
func (p Portfolio) PayoffDebts(includeBNPL bool) []Debt {
	debts := make([]Debt, 0, len(p.Debts)+len(p.BNPL))
	debts = append(debts, p.Debts...)
	if !includeBNPL {
		return debts
	}
	for _, b := range p.BNPL {
		if b.Remaining <= 0 {
			continue
		}
		installments := max(1, len(b.DueDates))
		apr := 0.0
		if b.APR != nil {
			apr = *b.APR
		}
		name := b.Provider
		if b.Description != "" {
			name += " " + b.Description
		}
		debts = append(debts, Debt{
			ID:         b.ID,
			Name:       name,
			Balance:    b.Remaining,
			APR:        apr,
			MinPayment: Round2(b.Remaining / float64(installments)),
		})
	}
	return debts
}

// --- helpers de validación ---
// Devuelven nil si el campo es válido; errors.Join descarta los nil.

func checkID(path, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s.id: required", path)
	}
	return nil
}

func checkText(path, s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%s: required", path)
	}
	return nil
}

func checkAmount(path string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: not a finite number", path)
	}
	if v < 0 {
		return fmt.Errorf("%s: must be >= 0, got %v", path, v)
	}
	return nil
}

func checkDate(path, s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("%s: want YYYY-MM-DD, got %q", path, s)
	}
	return nil
}
