package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alejandrodnm/debtplan/internal/adapters/storage"
	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/alejandrodnm/debtplan/internal/domain/payoff"
	"github.com/alejandrodnm/debtplan/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func makeRun(id string, created time.Time) domain.PlanRun {
	debts := []domain.Debt{
		{ID: "a", Name: "A", Balance: 1000, APR: 24, MinPayment: 25},
		{ID: "b", Name: "B", Balance: 500, APR: 12, MinPayment: 25},
	}
	return domain.PlanRun{
		ID:            id,
		CreatedAt:     created,
		Strategy:      domain.Avalanche,
		MonthlyBudget: 200,
		MaxMonths:     240,
		Result:        payoff.Simulate(debts, 200, domain.Avalanche, 240, nil),
	}
}

func TestSQLiteStorage_DebtsRoundTrip(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertDebts(ctx, []domain.Debt{
		{ID: "visa", Name: "Visa", Balance: 1200.5, APR: 24.99, MinPayment: 35},
		{ID: "auto", Name: "Auto Loan", Balance: 18000, APR: 6.9, MinPayment: 410},
	}))

	debts, err := db.ListDebts(ctx)
	require.NoError(t, err)
	require.Len(t, debts, 2)

	// Ordenadas por id
	assert.Equal(t, "auto", debts[0].ID)
	assert.Equal(t, domain.Debt{ID: "visa", Name: "Visa", Balance: 1200.5, APR: 24.99, MinPayment: 35}, debts[1])
}

func TestSQLiteStorage_UpsertUpdatesExisting(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertDebts(ctx, []domain.Debt{{ID: "visa", Name: "Visa", Balance: 1200}}))
	require.NoError(t, db.UpsertDebts(ctx, []domain.Debt{{ID: "visa", Name: "Visa Signature", Balance: 900}}))

	debts, err := db.ListDebts(ctx)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, "Visa Signature", debts[0].Name)
	assert.Equal(t, 900.0, debts[0].Balance)
}

func TestSQLiteStorage_UpsertEmptySlice(t *testing.T) {
	db := newDB(t)
	assert.NoError(t, db.UpsertDebts(context.Background(), nil))
}

func TestSQLiteStorage_DeleteDebt(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertDebts(ctx, []domain.Debt{{ID: "visa"}}))
	require.NoError(t, db.DeleteDebt(ctx, "visa"))

	err := db.DeleteDebt(ctx, "visa")
	assert.True(t, errors.Is(err, ports.ErrNotFound))

	debts, err := db.ListDebts(ctx)
	require.NoError(t, err)
	assert.Empty(t, debts)
}

func TestSQLiteStorage_SaveAndGetPlan(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	created := time.Date(2026, 10, 1, 12, 30, 0, 123, time.UTC)
	run := makeRun("run-1", created)
	require.NoError(t, db.SavePlan(ctx, run))

	got, err := db.GetPlan(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, "run-1", got.ID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, domain.Avalanche, got.Strategy)
	assert.Equal(t, 200.0, got.MonthlyBudget)
	assert.Equal(t, 240, got.MaxMonths)
	assert.Equal(t, run.Result.Months, got.Result.Months)
	assert.Equal(t, run.Result.TotalInterest, got.Result.TotalInterest)
	assert.Equal(t, domain.StatusCompleted, got.Result.Status)
	assert.Equal(t, run.Result.Schedule, got.Result.Schedule)
}

func TestSQLiteStorage_GetPlan_NotFound(t *testing.T) {
	db := newDB(t)
	_, err := db.GetPlan(context.Background(), "missing")
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}

func TestSQLiteStorage_ListPlans_NewestFirst(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.SavePlan(ctx, makeRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := db.ListPlans(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Empty(t, runs[0].Result.Schedule, "list omits schedules")
	assert.Equal(t, 9, runs[0].Result.Months)
}

func TestSQLiteStorage_Unlocked(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	ids, err := db.LoadUnlocked(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, db.SaveUnlocked(ctx, []string{"x1-cleared", "auto-30k"}))
	require.NoError(t, db.SaveUnlocked(ctx, []string{"auto-30k", "auto-20k"}))
	require.NoError(t, db.SaveUnlocked(ctx, nil))

	ids, err = db.LoadUnlocked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"auto-20k", "auto-30k", "x1-cleared"}, ids)
}
