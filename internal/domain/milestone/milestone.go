// Package milestone detects payoff milestones ("badges") as a plan progresses.
// An Evaluator plugs into payoff.Simulate as its per-month observer.
package milestone

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/alejandrodnm/debtplan/internal/domain"
)

// Kind is how a rule tests the balances of the debts it matches.
type Kind string

const (
	// AnyCleared fires once some matching debt is at or below domain.ClearedThreshold.
	AnyCleared Kind = "any_cleared"
	// AllCleared fires once there is at least one match and every match is cleared.
	AllCleared Kind = "all_cleared"
	// Below fires once some matching debt is strictly below Threshold.
	Below Kind = "below"
)

// Rule is a declarative milestone. Keywords are matched as case-insensitive
// substrings against each debt's id and name.
type Rule struct {
	ID        string   `yaml:"id" json:"id"`
	Label     string   `yaml:"label" json:"label"`
	Keywords  []string `yaml:"keywords" json:"keywords"`
	Kind      Kind     `yaml:"kind" json:"kind"`
	Threshold float64  `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

// Validate checks that the rule can be evaluated.
func (r Rule) Validate() error {
	if r.ID == "" || r.Label == "" {
		return fmt.Errorf("milestone %q: id and label are required", r.ID)
	}
	if len(r.Keywords) == 0 {
		return fmt.Errorf("milestone %q: at least one keyword is required", r.ID)
	}
	switch r.Kind {
	case AnyCleared, AllCleared:
	case Below:
		if r.Threshold <= 0 {
			return fmt.Errorf("milestone %q: below needs a positive threshold", r.ID)
		}
	default:
		return fmt.Errorf("milestone %q: unknown kind %q", r.ID, r.Kind)
	}
	return nil
}

// DefaultRules returns the built-in milestone table.
func DefaultRules() []Rule {
	return []Rule{
		{ID: "x1-cleared", Label: "X1 Cleared", Keywords: []string{"x1"}, Kind: AnyCleared},
		{ID: "paypal-cleared", Label: "PayPal Done", Keywords: []string{"paypal"}, Kind: AllCleared},
		{ID: "discover-cleared", Label: "Discover Free", Keywords: []string{"discover"}, Kind: AnyCleared},
		{ID: "apple-cleared", Label: "Apple Card Free", Keywords: []string{"apple"}, Kind: AnyCleared},
		{ID: "auto-30k", Label: "Auto Loan <$30k", Keywords: []string{"auto"}, Kind: Below, Threshold: 30000},
		{ID: "auto-20k", Label: "Auto Loan <$20k", Keywords: []string{"auto"}, Kind: Below, Threshold: 20000},
		{ID: "auto-10k", Label: "Auto Loan <$10k", Keywords: []string{"auto"}, Kind: Below, Threshold: 10000},
	}
}

// Evaluator accumulates unlocked milestone ids across months (and across
// runs, when seeded with previously unlocked ids).
type Evaluator struct {
	rules    []Rule
	matches  [][]string // rule index → matching debt ids
	unlocked map[string]bool
}

// NewEvaluator resolves which debts each rule applies to. unlocked may be nil;
// it is copied, never modified.
func NewEvaluator(rules []Rule, debts []domain.Debt, unlocked []string) *Evaluator {
	e := &Evaluator{
		rules:    rules,
		matches:  make([][]string, len(rules)),
		unlocked: make(map[string]bool, len(unlocked)),
	}
	for _, id := range unlocked {
		e.unlocked[id] = true
	}
	for i, r := range rules {
		for _, d := range debts {
			if matches(r.Keywords, d) {
				e.matches[i] = append(e.matches[i], d.ID)
			}
		}
	}
	return e
}

func matches(keywords []string, d domain.Debt) bool {
	id, name := strings.ToLower(d.ID), strings.ToLower(d.Name)
	for _, k := range keywords {
		k = strings.ToLower(k)
		if k == "" {
			continue
		}
		if strings.Contains(id, k) || strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// Evaluate returns the labels of rules newly satisfied by step, in rule order.
// Its signature matches payoff.OnMonthFunc.
func (e *Evaluator) Evaluate(step domain.PlanStep) []string {
	var newly []string
	for i, r := range e.rules {
		if e.unlocked[r.ID] || !e.test(r, e.matches[i], step.Balances) {
			continue
		}
		e.unlocked[r.ID] = true
		newly = append(newly, r.Label)
	}
	return newly
}

func (e *Evaluator) test(r Rule, ids []string, balances map[string]float64) bool {
	if len(ids) == 0 {
		return false
	}
	switch r.Kind {
	case AnyCleared:
		return slices.ContainsFunc(ids, func(id string) bool {
			return balances[id] <= domain.ClearedThreshold
		})
	case AllCleared:
		for _, id := range ids {
			if balances[id] > domain.ClearedThreshold {
				return false
			}
		}
		return true
	case Below:
		return slices.ContainsFunc(ids, func(id string) bool {
			return balances[id] < r.Threshold
		})
	}
	return false
}

// Unlocked returns every unlocked milestone id, sorted.
func (e *Evaluator) Unlocked() []string {
	out := make([]string, 0, len(e.unlocked))
	for id := range e.unlocked {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Labels maps rule ids to labels, for rendering persisted unlocks.
func Labels(rules []Rule) map[string]string {
	out := make(map[string]string, len(rules))
	for _, r := range rules {
		out[r.ID] = r.Label
	}
	return out
}
