package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/debtplan/config"
	"github.com/alejandrodnm/debtplan/internal/adapters/importer"
	"github.com/alejandrodnm/debtplan/internal/adapters/notify"
	"github.com/alejandrodnm/debtplan/internal/adapters/storage"
	"github.com/alejandrodnm/debtplan/internal/application/planner"
	"github.com/alejandrodnm/debtplan/internal/domain"
)

const defaultConfigPath = "config/config.yaml"

// defaultMonthlyBudget se usa cuando ni flag, ni config, ni portafolio dan un presupuesto.
const defaultMonthlyBudget = 1500

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to config file")
	importPath := flag.String("import", "", "import a portfolio (.json/.yaml) before planning")
	budget := flag.Float64("budget", 0, "monthly payoff budget (overrides config and portfolio)")
	strategy := flag.String("strategy", "", "snowball|avalanche (overrides config)")
	months := flag.Int("months", 0, "month cap (overrides config)")
	compare := flag.Bool("compare", false, "compare snowball vs avalanche instead of planning")
	sweep := flag.Int("sweep", 0, "simulate N budgets starting at the resolved one")
	sweepStep := flag.Float64("sweep-step", 100, "budget increment between sweep points")
	history := flag.Int("history", 0, "print the last N saved plans and exit")
	serve := flag.Bool("serve", false, "run the HTTP API")
	exportPath := flag.String("export", "", "write the plan to a .csv or .json file")
	table := flag.Bool("table", false, "print full schedule tables (default: compact 1-line)")
	dryRun := flag.Bool("dry-run", false, "use in-memory storage; nothing is persisted")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	dsn := cfg.Storage.DSN
	if *dryRun {
		dsn = ":memory:"
	}

	slog.Info("debtplan starting",
		"config", *configPath,
		"dsn", dsn,
		"serve", *serve,
		"compare", *compare,
		"dry_run", *dryRun,
	)

	store, err := storage.NewSQLiteStorage(dsn)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", dsn)
		os.Exit(1)
	}
	defer store.Close()

	notifier := notify.NewConsole(*table)
	p := planner.New(store, notifier, cfg.Rules())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *serve {
		// el API no imprime planes en consola
		api := planner.New(store, nil, cfg.Rules())
		if err := runServer(ctx, api, cfg.Server); err != nil {
			slog.Error("server exited with error", "err", err)
			os.Exit(1)
		}
		slog.Info("debtplan stopped cleanly")
		return
	}

	if *history > 0 {
		runs, err := p.History(ctx, *history)
		if err != nil {
			slog.Error("failed to load history", "err", err)
			os.Exit(1)
		}
		notifier.PrintHistory(runs)
		return
	}

	var portfolio *domain.Portfolio
	if *importPath != "" {
		portfolio, err = runImport(ctx, p, *importPath, cfg.Plan.IncludeBNPL)
		if err != nil {
			slog.Error("import failed", "err", err, "path", *importPath)
			os.Exit(1)
		}
	}

	strat := cfg.Strategy()
	if *strategy != "" {
		strat, err = domain.ParseStrategy(*strategy)
		if err != nil {
			slog.Error("invalid -strategy", "err", err)
			os.Exit(2)
		}
	}

	maxMonths := cfg.Plan.MaxMonths
	if *months > 0 {
		maxMonths = *months
	}

	req := planner.Request{
		MonthlyBudget: resolveBudget(*budget, cfg.Plan.MonthlyBudget, portfolio),
		Strategy:      strat,
		MaxMonths:     maxMonths,
	}

	switch {
	case *compare:
		err = runCompare(ctx, p, req, *exportPath)
	case *sweep > 0:
		err = runSweep(ctx, p, notifier, req, planner.SweepBudgets(req.MonthlyBudget, *sweepStep, *sweep))
	default:
		err = runPlan(ctx, p, req, *exportPath)
	}
	if err != nil {
		slog.Error("debtplan failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig tolera que falte el archivo por defecto: se usan env y defaults.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
		return config.Load("")
	}
	return cfg, err
}

func runImport(ctx context.Context, p *planner.Planner, path string, includeBNPL bool) (*domain.Portfolio, error) {
	portfolio, err := importer.Load(path)
	if err != nil {
		return nil, err
	}
	n, err := p.Import(ctx, portfolio, includeBNPL)
	if err != nil {
		return nil, err
	}
	slog.Info("import complete", "path", path, "debts_stored", n, "monthly_net", portfolio.MonthlyNet())
	return &portfolio, nil
}

// resolveBudget aplica la precedencia flag > config/env > categoría "Debt" del
// portafolio importado > defaultMonthlyBudget.
func resolveBudget(flagBudget, cfgBudget float64, portfolio *domain.Portfolio) float64 {
	switch {
	case flagBudget > 0:
		return flagBudget
	case cfgBudget > 0:
		return cfgBudget
	}
	if portfolio != nil {
		if b, ok := portfolio.DebtBudget(); ok {
			slog.Debug("using portfolio Debt budget", "budget", b)
			return b
		}
	}
	slog.Warn("no monthly budget configured, using default", "budget", defaultMonthlyBudget)
	return defaultMonthlyBudget
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
