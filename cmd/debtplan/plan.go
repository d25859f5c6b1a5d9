package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alejandrodnm/debtplan/internal/adapters/export"
	"github.com/alejandrodnm/debtplan/internal/adapters/notify"
	"github.com/alejandrodnm/debtplan/internal/application/planner"
)

func runPlan(ctx context.Context, p *planner.Planner, req planner.Request, exportPath string) error {
	run, err := p.Plan(ctx, req)
	if err != nil {
		return err
	}
	if exportPath == "" {
		return nil
	}

	debts, err := p.Debts(ctx)
	if err != nil {
		return err
	}
	return writeFile(exportPath, func(f *os.File) error {
		if strings.EqualFold(filepath.Ext(exportPath), ".csv") {
			return export.WriteScheduleCSV(f, debts, run.Result)
		}
		return export.WriteJSON(f, run)
	})
}

func runCompare(ctx context.Context, p *planner.Planner, req planner.Request, exportPath string) error {
	cmp, err := p.Compare(ctx, req)
	if err != nil {
		return err
	}
	if exportPath == "" {
		return nil
	}
	return writeFile(exportPath, func(f *os.File) error {
		return export.WriteJSON(f, cmp)
	})
}

func runSweep(ctx context.Context, p *planner.Planner, notifier *notify.Console, req planner.Request, budgets []float64) error {
	points, err := p.Sweep(ctx, req, budgets)
	if err != nil {
		return err
	}
	notifier.PrintSweep(req.Strategy, points)
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %q: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: close %q: %w", path, err)
	}
	slog.Info("exported", "path", path)
	return nil
}
