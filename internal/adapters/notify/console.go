package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/alejandrodnm/debtplan/internal/ports"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.PlanNotifier.
type Console struct {
	out   io.Writer
	table bool
}

var _ ports.PlanNotifier = (*Console)(nil)

// NewConsole crea un notificador que escribe a stdout.
// Con table=true imprime el schedule completo; si no, una línea de resumen.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyPlan imprime el plan en el modo configurado.
func (c *Console) NotifyPlan(_ context.Context, run domain.PlanRun, debts []domain.Debt) error {
	res := run.Result

	switch {
	case len(debts) == 0:
		fmt.Fprintf(c.out, "[%s] no debts to plan\n", now())
		return nil
	case res.Status == domain.StatusInfeasible:
		c.printInfeasible(run, debts)
		return nil
	}

	if c.table {
		c.printFull(run, debts)
	} else {
		c.printCompact(run, debts)
	}
	return nil
}

// printCompact imprime lo esencial en una línea (dos si quedó capado).
func (c *Console) printCompact(run domain.PlanRun, debts []domain.Debt) {
	res := run.Result

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s $%.2f/mo → %d debts, %d months, interest $%.2f",
		now(), run.Strategy, run.MonthlyBudget, len(debts), res.Months, res.TotalInterest)

	order := payoffOrder(res, debts)
	for i, d := range order {
		if i >= 3 {
			fmt.Fprintf(&sb, " …")
			break
		}
		fmt.Fprintf(&sb, " | %s m%d", truncate(d.DisplayName(), 20), res.PayoffMonth(d.ID))
	}
	if badges := res.Milestones(); len(badges) > 0 {
		fmt.Fprintf(&sb, " | %d milestones", len(badges))
	}

	fmt.Fprintln(c.out, sb.String())
	if res.Status == domain.StatusCapped {
		c.printCapped(res)
	}
}

// printFull imprime el schedule, el orden de pago y los milestones.
func (c *Console) printFull(run domain.PlanRun, debts []domain.Debt) {
	res := run.Result

	fmt.Fprintf(c.out, "\n[%s] %s plan — budget $%.2f/month, %d debts ($%.2f)\n",
		now(), run.Strategy, run.MonthlyBudget, len(debts), domain.TotalBalance(debts))
	if run.ID != "" {
		fmt.Fprintf(c.out, "  run: %s\n", run.ID)
	}

	c.printSchedule(res, debts)
	c.printPayoffOrder(res, debts)

	fmt.Fprintf(c.out, "\n  Months: %d   Total interest: $%.2f   Total paid: $%.2f\n",
		res.Months, res.TotalInterest, res.TotalPaid())

	if res.Status == domain.StatusCapped {
		c.printCapped(res)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printSchedule(res domain.PlanResult, debts []domain.Debt) {
	names := nameIndex(debts)

	table := tablewriter.NewWriter(c.out)
	table.Header("Month", "Target", "Payment", "Interest", "Principal", "Remaining", "Milestones")

	for _, s := range res.Schedule {
		target := "-"
		if s.TargetID != "" {
			target = truncate(names[s.TargetID], 24)
		}
		table.Append(
			fmt.Sprintf("%d", s.Month),
			target,
			fmt.Sprintf("$%.2f", s.Payment),
			fmt.Sprintf("$%.2f", s.Interest),
			fmt.Sprintf("$%.2f", s.Principal),
			fmt.Sprintf("$%.2f", sumBalances(s.Balances)),
			strings.Join(s.UnlockedBadges, ", "),
		)
	}
	table.Render()
}

func (c *Console) printPayoffOrder(res domain.PlanResult, debts []domain.Debt) {
	fmt.Fprintf(c.out, "\n=== PAYOFF ORDER ===\n")

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Debt", "Balance", "APR", "Min", "Paid off")

	final := res.FinalBalances()
	for i, d := range payoffOrder(res, debts) {
		paidOff := "-"
		if m := res.PayoffMonth(d.ID); m > 0 {
			paidOff = fmt.Sprintf("month %d", m)
		} else if b := final[d.ID]; b > 0 {
			paidOff = fmt.Sprintf("$%.2f left", b)
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(d.DisplayName(), 30),
			fmt.Sprintf("$%.2f", d.Balance),
			fmt.Sprintf("%.2f%%", d.APR),
			fmt.Sprintf("$%.2f", d.MinPayment),
			paidOff,
		)
	}
	table.Render()
}

func (c *Console) printInfeasible(run domain.PlanRun, debts []domain.Debt) {
	var mins float64
	for _, d := range debts {
		if d.Balance > 0 {
			mins += min(d.MinPayment, d.Balance)
		}
	}
	fmt.Fprintf(c.out, "[%s] ⚠ INFEASIBLE: %s\n", now(), domain.InfeasibleLabel)
	fmt.Fprintf(c.out, "  budget $%.2f/month < minimum payments $%.2f/month (short $%.2f)\n",
		run.MonthlyBudget, domain.Round2(mins), domain.Round2(mins-run.MonthlyBudget))
}

func (c *Console) printCapped(res domain.PlanResult) {
	fmt.Fprintf(c.out, "  ⚠ CAPPED at %d months: $%.2f still owed — raise the budget or the month cap\n",
		res.Months, sumBalances(res.FinalBalances()))
}

// NotifyComparison imprime snowball vs avalanche lado a lado.
func (c *Console) NotifyComparison(_ context.Context, cmp domain.Comparison) error {
	fmt.Fprintf(c.out, "\n[%s] STRATEGY COMPARISON — budget $%.2f/month\n", now(), cmp.MonthlyBudget)

	table := tablewriter.NewWriter(c.out)
	table.Header("Strategy", "Months", "Interest", "Status")
	for _, s := range []domain.StrategySummary{cmp.Snowball, cmp.Avalanche} {
		name := string(s.Strategy)
		if s.Strategy == cmp.Recommended {
			name += " *"
		}
		table.Append(
			name,
			fmt.Sprintf("%d", s.Months),
			fmt.Sprintf("$%.2f", s.TotalInterest),
			string(s.Status),
		)
	}
	table.Render()

	if cmp.Snowball.Status == domain.StatusInfeasible {
		fmt.Fprintf(c.out, "  ⚠ %s\n\n", domain.InfeasibleLabel)
		return nil
	}

	fmt.Fprintf(c.out, "  Avalanche saves $%.2f in interest", cmp.InterestSaved)
	switch {
	case cmp.MonthsSaved > 0:
		fmt.Fprintf(c.out, " and finishes %d months sooner", cmp.MonthsSaved)
	case cmp.MonthsSaved < 0:
		fmt.Fprintf(c.out, " but finishes %d months later", -cmp.MonthsSaved)
	}
	fmt.Fprintf(c.out, "\n  >>> RECOMMENDED: %s\n\n", cmp.Recommended)
	return nil
}

// PrintHistory imprime las últimas simulaciones guardadas.
func (c *Console) PrintHistory(runs []domain.PlanRun) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "\n  No saved plans yet.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "Created", "Strategy", "Budget", "Months", "Interest", "Status")
	for _, r := range runs {
		table.Append(
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(r.Strategy),
			fmt.Sprintf("$%.2f", r.MonthlyBudget),
			fmt.Sprintf("%d", r.Result.Months),
			fmt.Sprintf("$%.2f", r.Result.TotalInterest),
			string(r.Result.Status),
		)
	}
	table.Render()
}

// PrintSweep imprime meses e interés para cada presupuesto del barrido.
func (c *Console) PrintSweep(strategy domain.Strategy, points []domain.SweepPoint) {
	fmt.Fprintf(c.out, "\n[%s] BUDGET SWEEP (%s)\n", now(), strategy)

	table := tablewriter.NewWriter(c.out)
	table.Header("Budget", "Months", "Interest", "Status")
	for _, p := range points {
		months := fmt.Sprintf("%d", p.Months)
		if p.Status == domain.StatusInfeasible {
			months = "-"
		}
		table.Append(
			fmt.Sprintf("$%.2f", p.MonthlyBudget),
			months,
			fmt.Sprintf("$%.2f", p.TotalInterest),
			string(p.Status),
		)
	}
	table.Render()
	fmt.Fprintln(c.out)
}

// --- helpers ---

// payoffOrder ordena las deudas por mes de pago; las no pagadas van al final.
func payoffOrder(res domain.PlanResult, debts []domain.Debt) []domain.Debt {
	out := append([]domain.Debt(nil), debts...)
	month := make(map[string]int, len(out))
	for _, d := range out {
		m := res.PayoffMonth(d.ID)
		if m == 0 && d.Balance > domain.Epsilon {
			m = res.Months + 1
		}
		month[d.ID] = m
	}
	sort.SliceStable(out, func(i, j int) bool {
		return month[out[i].ID] < month[out[j].ID]
	})
	return out
}

func nameIndex(debts []domain.Debt) map[string]string {
	out := make(map[string]string, len(debts))
	for _, d := range debts {
		out[d.ID] = d.DisplayName()
	}
	return out
}

func sumBalances(balances map[string]float64) float64 {
	var total float64
	for _, b := range balances {
		total += b
	}
	return domain.Round2(total)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func now() string {
	return time.Now().Format("15:04:05")
}
