package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy se devuelve cuando el nombre de estrategia no es snowball ni avalanche.
var ErrUnknownStrategy = errors.New("unknown payoff strategy")

// Strategy decide qué deuda recibe el pago discrecional de cada mes.
type Strategy string

const (
	Snowball  Strategy = "snowball"  // menor balance primero
	Avalanche Strategy = "avalanche" // mayor APR primero
)

// ParseStrategy normaliza el nombre (case-insensitive). Vacío equivale a avalanche.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Avalanche):
		return Avalanche, nil
	case string(Snowball):
		return Snowball, nil
	default:
		return "", fmt.Errorf("domain.ParseStrategy: %q: %w", s, ErrUnknownStrategy)
	}
}

// Debt es una deuda de entrada al simulador. El simulador nunca la modifica.
type Debt struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Balance    float64 `json:"balance" yaml:"balance"`
	APR        float64 `json:"apr" yaml:"apr"` // en porcentaje: 24.99 = 24.99%
	MinPayment float64 `json:"minPayment" yaml:"minPayment"`
}

// MonthlyRate devuelve la tasa periódica mensual: apr / 100 / 12.
func (d Debt) MonthlyRate() float64 {
	return d.APR / 100 / 12
}

// DisplayName devuelve el nombre o, si está vacío, el id.
func (d Debt) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// TotalBalance suma los balances iniciales.
func TotalBalance(debts []Debt) float64 {
	var total float64
	for _, d := range debts {
		total += d.Balance
	}
	return total
}

// ValidateDebts aplica los chequeos que el simulador asume ya hechos:
// ids no vacíos y únicos, montos finitos y no negativos.
func ValidateDebts(debts []Debt) error {
	if err := errors.Join(debtErrors(debts)...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPortfolio, err)
	}
	return nil
}

func debtErrors(debts []Debt) []error {
	var errs []error
	seen := make(map[string]bool, len(debts))
	for i, d := range debts {
		path := fmt.Sprintf("debts[%d]", i)
		errs = append(errs, checkID(path, d.ID))
		if d.ID != "" {
			if seen[d.ID] {
				errs = append(errs, fmt.Errorf("%s.id: duplicate %q", path, d.ID))
			}
			seen[d.ID] = true
		}
		errs = append(errs,
			checkAmount(path+".balance", d.Balance),
			checkAmount(path+".apr", d.APR),
			checkAmount(path+".minPayment", d.MinPayment),
		)
	}
	return errs
}
