package payoff

import (
	"github.com/alejandrodnm/debtplan/internal/domain"
)

// Compare simulates both strategies with the same inputs and no observer.
func Compare(debts []domain.Debt, monthlyBudget float64, maxMonths int) domain.Comparison {
	snow := Simulate(debts, monthlyBudget, domain.Snowball, maxMonths, nil)
	aval := Simulate(debts, monthlyBudget, domain.Avalanche, maxMonths, nil)
	return NewComparison(monthlyBudget, snow, aval)
}

// NewComparison builds the comparison from two finished results.
//
// Avalanche is recommended unless it saves no interest and snowball finishes
// sooner; a finished plan always beats a capped or infeasible one.
func NewComparison(monthlyBudget float64, snowball, avalanche domain.PlanResult) domain.Comparison {
	c := domain.Comparison{
		MonthlyBudget: monthlyBudget,
		Snowball:      domain.Summarize(domain.Snowball, snowball),
		Avalanche:     domain.Summarize(domain.Avalanche, avalanche),
		InterestSaved: domain.Round2(max(0, snowball.TotalInterest-avalanche.TotalInterest)),
		MonthsSaved:   snowball.Months - avalanche.Months,
		Recommended:   domain.Avalanche,
	}

	switch {
	case avalanche.Completed() && !snowball.Completed():
	case snowball.Completed() && !avalanche.Completed():
		c.Recommended = domain.Snowball
	case c.InterestSaved == 0 && snowball.Months < avalanche.Months:
		c.Recommended = domain.Snowball
	}
	return c
}
