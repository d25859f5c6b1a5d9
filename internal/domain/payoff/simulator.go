// Package payoff simulates month-by-month debt payoff under the snowball and
// avalanche strategies.
//
// Balances are carried at full precision; rounding to cents happens only when a
// step is emitted and for the final interest total.
package payoff

import (
	"maps"

	"github.com/alejandrodnm/debtplan/internal/domain"
)

// DefaultMaxMonths caps a simulation when the caller passes maxMonths <= 0.
const DefaultMaxMonths = 600

// OnMonthFunc observes each emitted step and returns labels to attach to it.
// It receives a copy of the step; whatever it does to that copy never reaches
// the result. Accumulated state (e.g. already-unlocked milestones) lives in the
// caller's closure, not in the simulator.
type OnMonthFunc func(step domain.PlanStep) []string

// state is the mutable working set of one Simulate call.
type state struct {
	debts    []domain.Debt
	byID     map[string]domain.Debt
	balances map[string]float64
	selector *Selector
}

func newState(debts []domain.Debt, strategy domain.Strategy) *state {
	st := &state{
		debts:    debts,
		byID:     make(map[string]domain.Debt, len(debts)),
		balances: make(map[string]float64, len(debts)),
		selector: NewSelector(strategy),
	}
	for _, d := range debts {
		st.byID[d.ID] = d
		st.balances[d.ID] = d.Balance
		if !domain.IsZero(d.Balance) {
			st.selector.Push(d.ID, d.Balance, d.APR)
		}
	}
	return st
}

func (st *state) allZero() bool {
	for _, b := range st.balances {
		if !domain.IsZero(b) {
			return false
		}
	}
	return true
}

// minimumsDue sums min(minPayment, balance) over debts with a positive balance.
func (st *state) minimumsDue() float64 {
	var sum float64
	for _, d := range st.debts {
		if b := st.balances[d.ID]; b > 0 {
			sum += min(d.MinPayment, b)
		}
	}
	return sum
}

// sync re-ranks id after its balance changed, dropping it once paid.
func (st *state) sync(id string) {
	b := st.balances[id]
	if domain.IsZero(b) {
		st.selector.Remove(id)
		return
	}
	st.selector.Update(id, b, st.byID[id].APR)
}

// target returns the top-ranked debt that still owes money, discarding
// stale entries on the way.
func (st *state) target() (string, bool) {
	for {
		id, ok := st.selector.Peek()
		if !ok {
			return "", false
		}
		if !domain.IsZero(st.balances[id]) {
			return id, true
		}
		st.selector.Remove(id)
	}
}

func (st *state) roundedBalances() map[string]float64 {
	out := make(map[string]float64, len(st.balances))
	for id, b := range st.balances {
		out[id] = domain.Round2(b)
	}
	return out
}

// Simulate runs the payoff loop until every balance is at or below
// domain.Epsilon or maxMonths is reached.
//
// An empty debt list, or one where every balance is already zero, yields zero
// months, an empty schedule and StatusCompleted. When monthlyBudget cannot
// cover the minimum payments the result has zero months, StatusInfeasible and
// a single month-0 step carrying domain.InfeasibleLabel.
//
// debts is never modified. Ids are expected to be unique.
func Simulate(
	debts []domain.Debt,
	monthlyBudget float64,
	strategy domain.Strategy,
	maxMonths int,
	onMonth OnMonthFunc,
) domain.PlanResult {
	if maxMonths <= 0 {
		maxMonths = DefaultMaxMonths
	}

	st := newState(debts, strategy)

	if st.allZero() {
		return domain.PlanResult{Schedule: []domain.PlanStep{}, Status: domain.StatusCompleted}
	}

	if monthlyBudget+domain.FeasibilityTolerance < st.minimumsDue() {
		return infeasible(st)
	}

	var (
		month         int
		totalInterest float64
		schedule      = make([]domain.PlanStep, 0, min(maxMonths, 64))
	)

	for !st.allZero() && month < maxMonths {
		month++

		// 1. interest
		var interest float64
		for _, d := range st.debts {
			b := st.balances[d.ID]
			if domain.IsZero(b) {
				continue
			}
			accrued := b * d.MonthlyRate()
			st.balances[d.ID] = b + accrued
			interest += accrued
		}
		totalInterest += interest

		// 2. minimums; 3. re-rank everything touched by 1 and 2
		remaining := monthlyBudget
		for _, d := range st.debts {
			b := st.balances[d.ID]
			if domain.IsZero(b) {
				st.sync(d.ID)
				continue
			}
			if d.MinPayment > 0 {
				pay := min(d.MinPayment, b)
				st.balances[d.ID] = b - pay
				remaining -= pay
			}
			st.sync(d.ID)
		}

		// 4. target; 5. discretionary payment
		targetID, ok := st.target()
		if ok && remaining > domain.Epsilon {
			pay := min(remaining, st.balances[targetID])
			st.balances[targetID] -= pay
			remaining -= pay
			st.sync(targetID)
		}

		// 6. snap residue
		for id, b := range st.balances {
			if domain.IsZero(b) && b != 0 {
				st.balances[id] = 0
				st.selector.Remove(id)
			}
		}

		// 7. aggregates
		payment := monthlyBudget - max(0, remaining)
		principal := max(0, payment-interest)

		// 8. emit
		step := domain.PlanStep{
			Month:     month,
			Balances:  st.roundedBalances(),
			Payment:   domain.Round2(payment),
			Interest:  domain.Round2(interest),
			Principal: domain.Round2(principal),
			TargetID:  targetID,
		}
		if onMonth != nil {
			step.UnlockedBadges = onMonth(step.Clone())
		}
		schedule = append(schedule, step)
	}

	status := domain.StatusCompleted
	if !st.allZero() {
		status = domain.StatusCapped
	}

	return domain.PlanResult{
		Months:        month,
		TotalInterest: domain.Round2(totalInterest),
		Schedule:      schedule,
		Status:        status,
	}
}

func infeasible(st *state) domain.PlanResult {
	return domain.PlanResult{
		Months:        0,
		TotalInterest: 0,
		Schedule: []domain.PlanStep{{
			Month:          0,
			Balances:       maps.Clone(st.balances),
			UnlockedBadges: []string{domain.InfeasibleLabel},
		}},
		Status: domain.StatusInfeasible,
	}
}
