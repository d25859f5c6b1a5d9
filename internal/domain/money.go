package domain

import "github.com/shopspring/decimal"

const (
	// Epsilon: un balance <= Epsilon se considera pagado. Evita colas infinitas de float.
	Epsilon = 0.005
	// FeasibilityTolerance es la holgura del chequeo presupuesto vs. suma de mínimos.
	FeasibilityTolerance = 1e-6
	// ClearedThreshold es el balance redondeado a partir del cual un milestone da la deuda por saldada.
	ClearedThreshold = 0.01
)

// Round2 redondea a centavos con half-up (half away from zero para negativos).
// Solo se aplica en los bordes de reporte, nunca a mitad del cálculo.
func Round2(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}

// IsZero indica si un balance es efectivamente cero.
func IsZero(balance float64) bool {
	return balance <= Epsilon
}
