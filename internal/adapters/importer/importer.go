// Package importer reads a portfolio snapshot (budgets, debts, BNPL plans,
// recurring transactions and goals) from JSON or YAML.
package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alejandrodnm/debtplan/internal/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Format es el formato de serialización del archivo de importación.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat se devuelve para extensiones que no son .json, .yaml o .yml.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// FormatFromPath deduce el formato por la extensión.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("importer.FormatFromPath: %q: %w", path, ErrUnsupportedFormat)
	}
}

// payload es el formato en disco. Acepta `bnplPlans` como alias de `bnpl` y
// tolera `obligations`/`transactions`, que el planner no usa.
type payload struct {
	domain.Portfolio `yaml:",inline"`

	BNPLPlans    []domain.BNPLPlan `json:"bnplPlans" yaml:"bnplPlans"`
	Obligations  []map[string]any  `json:"obligations" yaml:"obligations"`
	Transactions []map[string]any  `json:"transactions" yaml:"transactions"`
}

// Load lee, completa y valida el archivo en path.
func Load(path string) (domain.Portfolio, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return domain.Portfolio{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.Portfolio{}, fmt.Errorf("importer.Load: open %q: %w", path, err)
	}
	defer f.Close()

	p, err := Read(f, format)
	if err != nil {
		return domain.Portfolio{}, fmt.Errorf("importer.Load: %s: %w", path, err)
	}
	return p, nil
}

// Read decodifica un portafolio, asigna ids faltantes y lo valida.
// Los campos desconocidos son un error.
func Read(r io.Reader, format Format) (domain.Portfolio, error) {
	var pl payload

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&pl); err != nil {
			return domain.Portfolio{}, fmt.Errorf("%w: decode json: %w", domain.ErrInvalidPortfolio, err)
		}
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return domain.Portfolio{}, fmt.Errorf("importer.Read: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&pl); err != nil && !errors.Is(err, io.EOF) {
			return domain.Portfolio{}, fmt.Errorf("%w: decode yaml: %w", domain.ErrInvalidPortfolio, err)
		}
	default:
		return domain.Portfolio{}, fmt.Errorf("importer.Read: %q: %w", format, ErrUnsupportedFormat)
	}

	p := pl.Portfolio
	p.BNPL = append(p.BNPL, pl.BNPLPlans...)
	if n := len(pl.Obligations) + len(pl.Transactions); n > 0 {
		slog.Debug("import: ignoring obligations/transactions", "count", n)
	}

	if n := AssignIDs(&p); n > 0 {
		slog.Info("import: assigned ids to records without one", "count", n)
	}

	if err := p.Validate(); err != nil {
		return domain.Portfolio{}, err
	}
	return p, nil
}

// AssignIDs da un uuid a cada registro con id vacío. Devuelve cuántos asignó.
func AssignIDs(p *domain.Portfolio) int {
	n := 0
	assign := func(id *string) {
		if strings.TrimSpace(*id) == "" {
			*id = uuid.New().String()
			n++
		}
	}
	for i := range p.Budgets {
		assign(&p.Budgets[i].ID)
	}
	for i := range p.Debts {
		assign(&p.Debts[i].ID)
	}
	for i := range p.BNPL {
		assign(&p.BNPL[i].ID)
	}
	for i := range p.Recurring {
		assign(&p.Recurring[i].ID)
	}
	for i := range p.Goals {
		assign(&p.Goals[i].ID)
	}
	return n
}
