// Package economics computes grid charge cost tables from DSO tariff data.
// Tariff files are semicolon-delimited CSV published per DSO and year, one
// row per charge component with a value column per grid level (NE1..NE7).
package economics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
)

// Options select which tariff applies.
type Options struct {
	DSO       string
	GridLevel int
	// FeedInRatedPowerLEQ5MW: feed-in charges only apply to plants with at
	// most 5 MW rated power; larger plants are exempt.
	FeedInRatedPowerLEQ5MW bool
	// Year of the tariff sheet; zero means the current year.
	Year int
}

// Charge is one aggregated cost row: the charge split into the consumption
// and injection directions, with monetary values kept exact.
type Charge struct {
	Component   string
	Type        string
	Unit        string
	Consumption decimal.Decimal
	Injection   decimal.Decimal
}

// LoadGridCosts reads the tariff file "<dir>/<dso>_<year>.csv" and computes
// the aggregated charge table.
func LoadGridCosts(dir string, opts Options) ([]Charge, error) {
	year := opts.Year
	if year == 0 {
		year = time.Now().Year()
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.csv", opts.DSO, year))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tariff file: %w", err)
	}
	defer f.Close()
	return CalculateGridCosts(f, opts)
}

// CalculateGridCosts parses tariff CSV and aggregates charges per
// (component, type, unit), splitting each row's value into the consumption
// and injection directions:
//
//	direction "consumption" -> consumption only
//	direction "feedin"      -> injection, if the <=5 MW rule applies
//	direction "both"        -> consumption, plus injection under the rule
func CalculateGridCosts(r io.Reader, opts Options) ([]Charge, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read tariff header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"component", "type", "direction", "unit"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("tariff data is missing column %q", required)
		}
	}
	gridColumn := fmt.Sprintf("NE%d", opts.GridLevel)
	gridIdx, ok := col[gridColumn]
	if !ok {
		return nil, fmt.Errorf("tariff data has no column for grid level %d", opts.GridLevel)
	}

	type groupKey struct {
		component, ctype, unit string
	}
	totals := make(map[groupKey]*Charge)
	var order []groupKey

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tariff row: %w", err)
		}

		value, err := decimal.NewFromString(record[gridIdx])
		if err != nil {
			return nil, fmt.Errorf("invalid charge value %q for component %q: %w",
				record[gridIdx], record[col["component"]], err)
		}

		var consumption, injection decimal.Decimal
		switch direction := record[col["direction"]]; direction {
		case "consumption":
			consumption = value
		case "feedin":
			if opts.FeedInRatedPowerLEQ5MW {
				injection = value
			}
		case "both":
			consumption = value
			if opts.FeedInRatedPowerLEQ5MW {
				injection = value
			}
		default:
			return nil, fmt.Errorf("unknown charge direction %q for component %q",
				direction, record[col["component"]])
		}

		key := groupKey{
			component: record[col["component"]],
			ctype:     record[col["type"]],
			unit:      record[col["unit"]],
		}
		if charge, exists := totals[key]; exists {
			charge.Consumption = charge.Consumption.Add(consumption)
			charge.Injection = charge.Injection.Add(injection)
		} else {
			totals[key] = &Charge{
				Component:   key.component,
				Type:        key.ctype,
				Unit:        key.unit,
				Consumption: consumption,
				Injection:   injection,
			}
			order = append(order, key)
		}
	}

	out := make([]Charge, 0, len(order))
	for _, key := range order {
		out = append(out, *totals[key])
	}
	return out, nil
}
