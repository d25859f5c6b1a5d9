package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/alejandrodnm/debtplan/internal/ports"
)

// SavePlan persiste una simulación. Un id repetido reemplaza la fila anterior.
func (s *SQLiteStorage) SavePlan(ctx context.Context, run domain.PlanRun) error {
	schedule, err := json.Marshal(run.Result.Schedule)
	if err != nil {
		return fmt.Errorf("storage.SavePlan: encode schedule: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO plan_runs
			(id, created_at, strategy, monthly_budget, max_months,
			 status, months, total_interest, schedule)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), string(run.Strategy),
		run.MonthlyBudget, run.MaxMonths, string(run.Result.Status),
		run.Result.Months, run.Result.TotalInterest, string(schedule),
	)
	if err != nil {
		return fmt.Errorf("storage.SavePlan: %w", err)
	}
	return nil
}

// GetPlan devuelve la simulación con su schedule.
func (s *SQLiteStorage) GetPlan(ctx context.Context, id string) (domain.PlanRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, strategy, monthly_budget, max_months,
		       status, months, total_interest, schedule
		FROM plan_runs WHERE id = ?`, id)

	var (
		run      domain.PlanRun
		schedule string
	)
	if err := scanRun(row.Scan, &run, &schedule); err != nil {
		if isNoRows(err) {
			return domain.PlanRun{}, fmt.Errorf("storage.GetPlan: %s: %w", id, ports.ErrNotFound)
		}
		return domain.PlanRun{}, fmt.Errorf("storage.GetPlan: %w", err)
	}
	if err := json.Unmarshal([]byte(schedule), &run.Result.Schedule); err != nil {
		return domain.PlanRun{}, fmt.Errorf("storage.GetPlan: decode schedule: %w", err)
	}
	return run, nil
}

// ListPlans devuelve las últimas simulaciones sin schedule, más recientes primero.
func (s *SQLiteStorage) ListPlans(ctx context.Context, limit int) ([]domain.PlanRun, error) {
	if limit <= 0 {
		limit = keepRuns
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, strategy, monthly_budget, max_months,
		       status, months, total_interest, ''
		FROM plan_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListPlans: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.PlanRun
	for rows.Next() {
		var (
			run  domain.PlanRun
			skip string
		)
		if err := scanRun(rows.Scan, &run, &skip); err != nil {
			return nil, fmt.Errorf("storage.ListPlans: scan row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadUnlocked devuelve los ids de milestones desbloqueados, ordenados.
func (s *SQLiteStorage) LoadUnlocked(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM milestones ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadUnlocked: query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage.LoadUnlocked: scan row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveUnlocked registra ids nuevos; los existentes conservan su fecha original.
func (s *SQLiteStorage) SaveUnlocked(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveUnlocked: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := nowUTC()
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO milestones (id, unlocked_at) VALUES (?, ?)`, id, now,
		); err != nil {
			return fmt.Errorf("storage.SaveUnlocked: insert %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveUnlocked: commit: %w", err)
	}
	return nil
}

// --- helpers internos ---

func scanRun(scan func(dest ...any) error, run *domain.PlanRun, schedule *string) error {
	var created, strategy, status string
	if err := scan(
		&run.ID, &created, &strategy, &run.MonthlyBudget, &run.MaxMonths,
		&status, &run.Result.Months, &run.Result.TotalInterest, schedule,
	); err != nil {
		return err
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	run.Strategy = domain.Strategy(strategy)
	run.Result.Status = domain.PlanStatus(status)
	return nil
}

// timeLayout es de ancho fijo para que ORDER BY sobre el texto sea cronológico.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func nowUTC() string {
	return time.Now().UTC().Format(timeLayout)
}
