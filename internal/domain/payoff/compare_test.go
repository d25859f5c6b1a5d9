package payoff_test

import (
	"testing"

	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/alejandrodnm/debtplan/internal/domain/payoff"
	"github.com/stretchr/testify/assert"
)

func TestCompare_TwoDebts(t *testing.T) {
	c := payoff.Compare(twoDebts(), 200, 240)

	assert.Equal(t, 200.0, c.MonthlyBudget)
	assert.Equal(t, domain.Snowball, c.Snowball.Strategy)
	assert.Equal(t, domain.Avalanche, c.Avalanche.Strategy)
	assert.Equal(t, 9, c.Snowball.Months)
	assert.Equal(t, 9, c.Avalanche.Months)
	assert.InDelta(t, 26.69, c.InterestSaved, 0.02)
	assert.Equal(t, 0, c.MonthsSaved)
	assert.Equal(t, domain.Avalanche, c.Recommended)
}

func TestCompare_AvalancheCheaperButSlower(t *testing.T) {
	debts := []domain.Debt{
		{ID: "card", Balance: 4200, APR: 27.99, MinPayment: 120},
		{ID: "auto", Balance: 18500, APR: 6.5, MinPayment: 380},
		{ID: "store", Balance: 650, APR: 31, MinPayment: 35},
		{ID: "student", Balance: 9100, APR: 4.5, MinPayment: 95},
	}
	c := payoff.Compare(debts, 1500, 240)

	assert.Equal(t, 24, c.Snowball.Months)
	assert.Equal(t, 25, c.Avalanche.Months)
	assert.Equal(t, -1, c.MonthsSaved)
	assert.InDelta(t, 142.76, c.InterestSaved, 0.02)
	assert.Equal(t, domain.Avalanche, c.Recommended)
}

func TestNewComparison_Recommendation(t *testing.T) {
	done := func(months int, interest float64) domain.PlanResult {
		return domain.PlanResult{Months: months, TotalInterest: interest, Status: domain.StatusCompleted}
	}
	capped := domain.PlanResult{Months: 12, TotalInterest: 10, Status: domain.StatusCapped}

	tests := []struct {
		name      string
		snowball  domain.PlanResult
		avalanche domain.PlanResult
		want      domain.Strategy
		saved     float64
	}{
		{"avalanche cheaper", done(10, 150), done(10, 100), domain.Avalanche, 50},
		{"equal interest, snowball faster", done(9, 100), done(10, 100), domain.Snowball, 0},
		{"equal everything", done(10, 100), done(10, 100), domain.Avalanche, 0},
		{"only snowball finishes", done(10, 100), capped, domain.Snowball, 90},
		{"only avalanche finishes", capped, done(10, 100), domain.Avalanche, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := payoff.NewComparison(500, tt.snowball, tt.avalanche)
			assert.Equal(t, tt.want, c.Recommended)
			assert.InDelta(t, tt.saved, c.InterestSaved, 1e-9)
		})
	}
}

func TestCompare_Infeasible(t *testing.T) {
	debts := []domain.Debt{{ID: "a", Balance: 1000, APR: 24, MinPayment: 300}}
	c := payoff.Compare(debts, 200, 12)

	assert.Equal(t, domain.StatusInfeasible, c.Snowball.Status)
	assert.Equal(t, domain.StatusInfeasible, c.Avalanche.Status)
	assert.Zero(t, c.InterestSaved)
}
