package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/alejandrodnm/debtplan/internal/domain/milestone"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de debtplan.
type Config struct {
	Plan       PlanConfig       `yaml:"plan"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Milestones []milestone.Rule `yaml:"milestones"` // vacío → reglas por defecto
}

// PlanConfig son los parámetros por defecto de cada simulación.
type PlanConfig struct {
	MonthlyBudget float64 `yaml:"monthly_budget"` // 0 → categoría "Debt" del portafolio importado
	Strategy      string  `yaml:"strategy"`       // snowball | avalanche
	MaxMonths     int     `yaml:"max_months"`
	IncludeBNPL   bool    `yaml:"include_bnpl"` // los planes BNPL entran al simulador como deudas
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// ServerConfig controla el modo -serve.
type ServerConfig struct {
	Addr              string  `yaml:"addr"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // por IP
	Burst             int     `yaml:"burst"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Con path vacío solo se aplican variables de entorno y defaults.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Strategy devuelve la estrategia configurada ya normalizada.
func (c *Config) Strategy() domain.Strategy {
	s, err := domain.ParseStrategy(c.Plan.Strategy)
	if err != nil {
		return domain.Avalanche // validate ya lo rechazó
	}
	return s
}

// Rules devuelve las reglas de milestones efectivas.
func (c *Config) Rules() []milestone.Rule {
	if len(c.Milestones) == 0 {
		return milestone.DefaultRules()
	}
	return c.Milestones
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DEBTPLAN_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("DEBTPLAN_STRATEGY"); v != "" {
		cfg.Plan.Strategy = v
	}
	if v := os.Getenv("DEBTPLAN_BUDGET"); v != "" {
		b, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DEBTPLAN_BUDGET: %w", err)
		}
		cfg.Plan.MonthlyBudget = b
	}
	if v := os.Getenv("DEBTPLAN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Plan.Strategy == "" {
		cfg.Plan.Strategy = string(domain.Avalanche)
	}
	if cfg.Plan.MaxMonths <= 0 {
		cfg.Plan.MaxMonths = 600
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "debtplan.db"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.RequestsPerSecond <= 0 {
		cfg.Server.RequestsPerSecond = 5
	}
	if cfg.Server.Burst <= 0 {
		cfg.Server.Burst = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if _, err := domain.ParseStrategy(c.Plan.Strategy); err != nil {
		return err
	}
	if c.Plan.MonthlyBudget < 0 {
		return fmt.Errorf("plan.monthly_budget: must be >= 0, got %v", c.Plan.MonthlyBudget)
	}
	for i, r := range c.Milestones {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("milestones[%d]: %w", i, err)
		}
	}
	return nil
}
