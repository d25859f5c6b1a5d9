package storage

// sqlite.go: persistencia del portafolio y de los planes.
//
// Tablas:
//   - `debts`: una fila por deuda (UPSERT por id).
//   - `plan_runs`: una fila por simulación; el schedule va como JSON porque
//     siempre se lee completo y nunca se consulta por mes.
//   - `milestones`: ids desbloqueados, para no repetir badges entre runs.
//   - Prune al arrancar: solo se conservan los últimos keepRuns planes.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/alejandrodnm/debtplan/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS debts (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    balance     REAL NOT NULL DEFAULT 0,
    apr         REAL NOT NULL DEFAULT 0,
    min_payment REAL NOT NULL DEFAULT 0,
    updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS plan_runs (
    id             TEXT PRIMARY KEY,
    created_at     DATETIME NOT NULL,
    strategy       TEXT NOT NULL,
    monthly_budget REAL NOT NULL,
    max_months     INTEGER NOT NULL,
    status         TEXT NOT NULL,
    months         INTEGER NOT NULL DEFAULT 0,
    total_interest REAL NOT NULL DEFAULT 0,
    schedule       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS milestones (
    id          TEXT PRIMARY KEY,
    unlocked_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plan_runs_created ON plan_runs(created_at DESC);
`

// keepRuns es cuántas simulaciones se conservan tras el prune.
const keepRuns = 200

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

var _ ports.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia planes antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// UpsertDebts inserta o actualiza las deudas en una sola transacción.
func (s *SQLiteStorage) UpsertDebts(ctx context.Context, debts []domain.Debt) error {
	if len(debts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.UpsertDebts: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO debts (id, name, balance, apr, min_payment, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name        = excluded.name,
			balance     = excluded.balance,
			apr         = excluded.apr,
			min_payment = excluded.min_payment,
			updated_at  = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("storage.UpsertDebts: prepare: %w", err)
	}
	defer stmt.Close()

	now := nowUTC()
	for _, d := range debts {
		if _, err := stmt.ExecContext(ctx, d.ID, d.Name, d.Balance, d.APR, d.MinPayment, now); err != nil {
			return fmt.Errorf("storage.UpsertDebts: upsert %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.UpsertDebts: commit: %w", err)
	}
	return nil
}

// ListDebts devuelve todas las deudas ordenadas por id.
func (s *SQLiteStorage) ListDebts(ctx context.Context) ([]domain.Debt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, balance, apr, min_payment FROM debts ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.ListDebts: query: %w", err)
	}
	defer rows.Close()

	var debts []domain.Debt
	for rows.Next() {
		var d domain.Debt
		if err := rows.Scan(&d.ID, &d.Name, &d.Balance, &d.APR, &d.MinPayment); err != nil {
			return nil, fmt.Errorf("storage.ListDebts: scan row: %w", err)
		}
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// DeleteDebt elimina una deuda por id.
func (s *SQLiteStorage) DeleteDebt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM debts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage.DeleteDebt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage.DeleteDebt: %s: %w", id, ports.ErrNotFound)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra todo salvo los últimos keepRuns planes.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	s.db.ExecContext(ctx, `
		DELETE FROM plan_runs WHERE id NOT IN (
			SELECT id FROM plan_runs ORDER BY created_at DESC LIMIT ?
		)`, keepRuns)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
