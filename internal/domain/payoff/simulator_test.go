package payoff_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/alejandrodnm/debtplan/internal/domain/payoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoDebts() []domain.Debt {
	return []domain.Debt{
		{ID: "a", Name: "A", Balance: 1000, APR: 24, MinPayment: 25},
		{ID: "b", Name: "B", Balance: 500, APR: 12, MinPayment: 25},
	}
}

func TestSimulate_TwoDebtsAvalanche(t *testing.T) {
	res := payoff.Simulate(twoDebts(), 200, domain.Avalanche, 240, nil)

	require.Greater(t, res.Months, 0)
	assert.Equal(t, domain.StatusCompleted, res.Status)
	assert.Len(t, res.Schedule, res.Months)

	last := res.Schedule[len(res.Schedule)-1]
	assert.Equal(t, 0.0, last.Balances["a"])
	assert.Equal(t, 0.0, last.Balances["b"])

	later := res.Schedule[min(6, len(res.Schedule)-1)]
	assert.LessOrEqual(t, later.Interest, res.Schedule[0].Interest)

	assert.Equal(t, 9, res.Months)
	assert.InDelta(t, 105.50, res.TotalInterest, 0.01)
}

func TestSimulate_FirstMonthByHand(t *testing.T) {
	// interest: 1000×2% + 500×1% = 25
	// minimums: a 1020→995, b 505→480, remaining 150 → a 845
	res := payoff.Simulate(twoDebts(), 200, domain.Avalanche, 240, nil)
	first := res.Schedule[0]

	assert.Equal(t, 1, first.Month)
	assert.Equal(t, "a", first.TargetID)
	assert.InDelta(t, 25.0, first.Interest, 1e-9)
	assert.InDelta(t, 200.0, first.Payment, 1e-9)
	assert.InDelta(t, 175.0, first.Principal, 1e-9)
	assert.InDelta(t, 845.0, first.Balances["a"], 1e-9)
	assert.InDelta(t, 480.0, first.Balances["b"], 1e-9)
}

func TestSimulate_TwoDebtsSnowball(t *testing.T) {
	res := payoff.Simulate(twoDebts(), 200, domain.Snowball, 240, nil)

	assert.Equal(t, domain.StatusCompleted, res.Status)
	assert.Equal(t, "b", res.Schedule[0].TargetID)
	assert.InDelta(t, 330.0, res.Schedule[0].Balances["b"], 1e-9)
	assert.Equal(t, 9, res.Months)
	assert.InDelta(t, 132.19, res.TotalInterest, 0.01)
}

func TestSimulate_Infeasible(t *testing.T) {
	debts := []domain.Debt{{ID: "a", Name: "A", Balance: 1000, APR: 24, MinPayment: 300}}
	res := payoff.Simulate(debts, 200, domain.Avalanche, 12, nil)

	assert.Equal(t, 0, res.Months)
	assert.Equal(t, 0.0, res.TotalInterest)
	assert.Equal(t, domain.StatusInfeasible, res.Status)
	require.Len(t, res.Schedule, 1)

	step := res.Schedule[0]
	assert.Equal(t, 0, step.Month)
	assert.Equal(t, 1000.0, step.Balances["a"])
	assert.Zero(t, step.Payment)
	assert.Zero(t, step.Interest)
	assert.Zero(t, step.Principal)
	assert.Empty(t, step.TargetID)
	require.NotEmpty(t, step.UnlockedBadges)
	assert.Contains(t, step.UnlockedBadges[0], "Budget < sum(min payments)")
}

func TestSimulate_InfeasibleSkipsCallback(t *testing.T) {
	debts := []domain.Debt{{ID: "a", Balance: 1000, APR: 24, MinPayment: 300}}
	called := false
	payoff.Simulate(debts, 200, domain.Avalanche, 12, func(domain.PlanStep) []string {
		called = true
		return nil
	})
	assert.False(t, called)
}

func TestSimulate_NegativeBudgetIsInfeasible(t *testing.T) {
	debts := []domain.Debt{{ID: "a", Balance: 100, APR: 10, MinPayment: 0}}
	res := payoff.Simulate(debts, -1, domain.Snowball, 12, nil)
	assert.Equal(t, domain.StatusInfeasible, res.Status)
}

func TestSimulate_MinimumsExactlyCovered(t *testing.T) {
	// budget == sum of minimums is feasible
	debts := []domain.Debt{{ID: "a", Balance: 100, APR: 0, MinPayment: 50}}
	res := payoff.Simulate(debts, 50, domain.Snowball, 12, nil)
	assert.Equal(t, domain.StatusCompleted, res.Status)
	assert.Equal(t, 2, res.Months)
}

func TestSimulate_EmptyAndAlreadyPaid(t *testing.T) {
	for name, debts := range map[string][]domain.Debt{
		"empty": nil,
		"zero":  {{ID: "a", Balance: 0, APR: 20, MinPayment: 25}},
		"dust":  {{ID: "a", Balance: 0.004, APR: 20, MinPayment: 25}},
	} {
		t.Run(name, func(t *testing.T) {
			res := payoff.Simulate(debts, 0, domain.Avalanche, 12, nil)
			assert.Equal(t, 0, res.Months)
			assert.Empty(t, res.Schedule)
			assert.Equal(t, 0.0, res.TotalInterest)
			assert.Equal(t, domain.StatusCompleted, res.Status)
		})
	}
}

func TestSimulate_MinPaymentAboveBalanceNeverOverpays(t *testing.T) {
	debts := []domain.Debt{{ID: "a", Balance: 40, APR: 0, MinPayment: 100}}
	res := payoff.Simulate(debts, 100, domain.Avalanche, 12, nil)

	require.Equal(t, 1, res.Months)
	assert.InDelta(t, 40.0, res.Schedule[0].Payment, 1e-9)
	assert.Equal(t, 0.0, res.Schedule[0].Balances["a"])
}

func TestSimulate_CappedWhenBudgetTooSmall(t *testing.T) {
	// minimum barely above interest: cannot finish in 12 months
	debts := []domain.Debt{{ID: "a", Balance: 10000, APR: 12, MinPayment: 110}}
	res := payoff.Simulate(debts, 110, domain.Avalanche, 12, nil)

	assert.Equal(t, 12, res.Months)
	assert.Equal(t, domain.StatusCapped, res.Status)
	assert.False(t, res.Completed())
	assert.Greater(t, res.FinalBalances()["a"], 0.0)
}

func TestSimulate_DefaultMaxMonths(t *testing.T) {
	debts := []domain.Debt{{ID: "a", Balance: 1e6, APR: 12, MinPayment: 10000}}
	res := payoff.Simulate(debts, 10000, domain.Avalanche, 0, nil)
	assert.Equal(t, payoff.DefaultMaxMonths, res.Months)
	assert.Equal(t, domain.StatusCapped, res.Status)
}

func TestSimulate_DoesNotMutateInput(t *testing.T) {
	debts := twoDebts()
	before := append([]domain.Debt(nil), debts...)
	payoff.Simulate(debts, 200, domain.Snowball, 240, nil)
	assert.Equal(t, before, debts)
}

func TestSimulate_Properties(t *testing.T) {
	debts := []domain.Debt{
		{ID: "card", Name: "Visa", Balance: 4200, APR: 27.99, MinPayment: 120},
		{ID: "auto", Name: "Auto Loan", Balance: 18500, APR: 6.5, MinPayment: 380},
		{ID: "store", Name: "Store card", Balance: 650, APR: 31, MinPayment: 35},
		{ID: "student", Name: "Student", Balance: 9100, APR: 4.5, MinPayment: 95},
	}

	for _, strategy := range []domain.Strategy{domain.Snowball, domain.Avalanche} {
		t.Run(string(strategy), func(t *testing.T) {
			res := payoff.Simulate(debts, 1500, strategy, 240, nil)
			require.Equal(t, domain.StatusCompleted, res.Status)
			require.LessOrEqual(t, res.Months, 240)

			prev := map[string]float64{}
			for _, d := range debts {
				prev[d.ID] = d.Balance
			}
			var interest float64
			for i, step := range res.Schedule {
				assert.Equal(t, i+1, step.Month, "months are consecutive")

				// conservation
				assert.InDelta(t, step.Payment, step.Principal+step.Interest, 0.011, "month %d", step.Month)
				assert.GreaterOrEqual(t, step.Principal, 0.0)
				interest += step.Interest

				for id, b := range step.Balances {
					// monotonic clearance, idempotent zero
					assert.LessOrEqual(t, b, prev[id]+1e-9, "debt %s month %d", id, step.Month)
					if prev[id] == 0 {
						assert.Equal(t, 0.0, b)
					}
					prev[id] = b
				}
				assert.Len(t, step.Balances, len(debts))
			}
			assert.InDelta(t, res.TotalInterest, interest, 0.01*float64(res.Months))
		})
	}
}

func TestSimulate_AvalancheTargetsHighestAPR(t *testing.T) {
	// the high-APR debt is also the larger one
	debts := []domain.Debt{
		{ID: "big-high", Balance: 3000, APR: 25, MinPayment: 50},
		{ID: "small-low", Balance: 800, APR: 8, MinPayment: 30},
	}
	res := payoff.Simulate(debts, 400, domain.Avalanche, 120, nil)
	for _, step := range res.Schedule {
		if step.Balances["big-high"] > 0 && step.Balances["small-low"] > 0 {
			assert.Equal(t, "big-high", step.TargetID, "month %d", step.Month)
		}
	}
}

func TestSimulate_SnowballTargetsSmallestBalance(t *testing.T) {
	// the small debt has the lowest APR
	debts := []domain.Debt{
		{ID: "big-high", Balance: 3000, APR: 25, MinPayment: 50},
		{ID: "small-low", Balance: 800, APR: 8, MinPayment: 30},
	}
	res := payoff.Simulate(debts, 400, domain.Snowball, 120, nil)
	for _, step := range res.Schedule {
		if step.Balances["big-high"] > 0 && step.Balances["small-low"] > 0 {
			assert.Equal(t, "small-low", step.TargetID, "month %d", step.Month)
		}
	}
}

func TestSimulate_TieBrokenByID(t *testing.T) {
	debts := []domain.Debt{
		{ID: "zeta", Balance: 500, APR: 10, MinPayment: 10},
		{ID: "alpha", Balance: 500, APR: 10, MinPayment: 10},
	}
	for _, strategy := range []domain.Strategy{domain.Snowball, domain.Avalanche} {
		res := payoff.Simulate(debts, 100, strategy, 60, nil)
		assert.Equal(t, "alpha", res.Schedule[0].TargetID, string(strategy))
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	a := payoff.Simulate(twoDebts(), 175, domain.Snowball, 240, nil)
	b := payoff.Simulate(twoDebts(), 175, domain.Snowball, 240, nil)
	assert.Equal(t, a, b)
}

func TestSimulate_CallbackReceivesStepsAndCannotAlterNumbers(t *testing.T) {
	plain := payoff.Simulate(twoDebts(), 200, domain.Avalanche, 240, nil)

	var months []int
	observed := payoff.Simulate(twoDebts(), 200, domain.Avalanche, 240, func(step domain.PlanStep) []string {
		months = append(months, step.Month)
		// tamper with the copy
		step.Balances["a"] = 1e9
		step.Payment = -1
		if step.Month == 3 {
			return []string{"third month"}
		}
		return nil
	})

	require.Len(t, observed.Schedule, len(plain.Schedule))
	assert.Equal(t, plain.Months, observed.Months)
	assert.Equal(t, plain.TotalInterest, observed.TotalInterest)
	for i := range plain.Schedule {
		p, o := plain.Schedule[i], observed.Schedule[i]
		assert.Equal(t, p.Balances, o.Balances)
		assert.Equal(t, p.Payment, o.Payment)
		assert.Equal(t, p.Interest, o.Interest)
		assert.Equal(t, p.Principal, o.Principal)
		assert.Equal(t, p.TargetID, o.TargetID)
	}
	assert.Equal(t, []string{"third month"}, observed.Schedule[2].UnlockedBadges)
	assert.Len(t, months, observed.Months)
}

func TestSimulate_ScaleThreeHundredDebts(t *testing.T) {
	debts := make([]domain.Debt, 300)
	for i := range debts {
		debts[i] = domain.Debt{
			ID:         fmt.Sprintf("debt-%03d", i),
			Balance:    float64(500 + (i*137)%9500),
			APR:        float64(3 + (i*7)%27),
			MinPayment: 20,
		}
	}

	start := time.Now()
	res := payoff.Simulate(debts, 10000, domain.Avalanche, 36, nil)
	elapsed := time.Since(start)

	assert.LessOrEqual(t, res.Months, 36)
	assert.Less(t, elapsed, 2*time.Second)
}

func BenchmarkSimulate_300Debts(b *testing.B) {
	debts := make([]domain.Debt, 300)
	for i := range debts {
		debts[i] = domain.Debt{
			ID:         fmt.Sprintf("debt-%03d", i),
			Balance:    float64(500 + (i*137)%9500),
			APR:        float64(3 + (i*7)%27),
			MinPayment: 20,
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payoff.Simulate(debts, 10000, domain.Snowball, 36, nil)
	}
}
