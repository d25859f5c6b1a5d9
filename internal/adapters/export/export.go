// Package export writes plan snapshots as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alejandrodnm/debtplan/internal/domain"
)

// WriteScheduleCSV escribe una fila por mes con una columna de balance por deuda,
// en el orden de debts.
func WriteScheduleCSV(w io.Writer, debts []domain.Debt, res domain.PlanResult) error {
	cw := csv.NewWriter(w)

	header := []string{"month", "target", "payment", "interest", "principal"}
	for _, d := range debts {
		header = append(header, d.DisplayName())
	}
	header = append(header, "milestones")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export.WriteScheduleCSV: header: %w", err)
	}

	for _, s := range res.Schedule {
		row := []string{
			strconv.Itoa(s.Month),
			s.TargetID,
			money(s.Payment),
			money(s.Interest),
			money(s.Principal),
		}
		for _, d := range debts {
			row = append(row, money(s.Balances[d.ID]))
		}
		row = append(row, strings.Join(s.UnlockedBadges, "; "))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export.WriteScheduleCSV: month %d: %w", s.Month, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export.WriteScheduleCSV: flush: %w", err)
	}
	return nil
}

// WriteJSON escribe v indentado con dos espacios.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("export.WriteJSON: %w", err)
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
