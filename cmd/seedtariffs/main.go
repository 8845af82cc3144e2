// Command seedtariffs converts the published tariff schedule Excel file
// into a SQL seed file. Each row of the Tariff_Schedule sheet holds one
// slab; rows sharing a category and effective date form one tariff.
// Usage: go run ./cmd/seedtariffs
// Output: db/seeds/tariffs.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type slabRow struct {
	startUnits int64
	endUnits   *int64 // nil = unbounded
	rate       string
}

type tariffGroup struct {
	category      string
	fixedCharge   string
	dutyPercent   string
	gstPercent    string
	effectiveDate string
	slabs         []slabRow
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := "Tariff_Schedule.xlsx"
	outPath := "db/seeds/tariffs.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	groups, err := parseSchedule(f)
	if err != nil {
		return fmt.Errorf("parse schedule: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := writeSeed(out, groups); err != nil {
		return fmt.Errorf("write seed: %w", err)
	}

	log.Printf("Generated %d tariffs in %s", len(groups), outPath)
	return nil
}

// parseSchedule reads the first sheet. Columns: A=category,
// B=effective date (YYYY-MM-DD), C=fixed charge, D=duty %, E=GST %,
// F=slab start, G=slab end (blank = unbounded), H=rate per unit.
// Data starts at row index 1 (row 0 is the header).
func parseSchedule(f *excelize.File) ([]*tariffGroup, error) {
	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*tariffGroup)
	var order []string

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 8 {
			continue
		}
		category := strings.ToLower(strings.TrimSpace(row[0]))
		effectiveDate := strings.TrimSpace(row[1])
		if category == "" || effectiveDate == "" {
			continue
		}

		start, err := strconv.ParseInt(strings.TrimSpace(row[5]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad slab start %q", i+1, row[5])
		}
		var end *int64
		if raw := strings.TrimSpace(row[6]); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad slab end %q", i+1, row[6])
			}
			end = &v
		}

		key := category + "|" + effectiveDate
		g, ok := byKey[key]
		if !ok {
			g = &tariffGroup{
				category:      category,
				fixedCharge:   strings.TrimSpace(row[2]),
				dutyPercent:   strings.TrimSpace(row[3]),
				gstPercent:    strings.TrimSpace(row[4]),
				effectiveDate: effectiveDate,
			}
			byKey[key] = g
			order = append(order, key)
		}
		g.slabs = append(g.slabs, slabRow{
			startUnits: start,
			endUnits:   end,
			rate:       strings.TrimSpace(row[7]),
		})
	}

	groups := make([]*tariffGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, byKey[key])
	}
	return groups, nil
}

func writeSeed(out *os.File, groups []*tariffGroup) error {
	w := func(format string, args ...interface{}) error {
		_, err := fmt.Fprintf(out, format+"\n", args...)
		return err
	}

	if err := w("-- Tariff seed data generated from the published schedule."); err != nil {
		return err
	}
	if err := w("-- %d tariffs. Run: make seed-tariffs", len(groups)); err != nil {
		return err
	}
	if err := w("BEGIN;"); err != nil {
		return err
	}

	for _, g := range groups {
		tariffID := uuid.New()
		err := w(`INSERT INTO tariffs (id, category, fixed_charge, duty_percent, gst_percent, effective_date, status, created_at, updated_at)
VALUES ('%s', '%s', %s, %s, %s, '%s', 'active', now(), now());`,
			tariffID, g.category, g.fixedCharge, g.dutyPercent, g.gstPercent, g.effectiveDate)
		if err != nil {
			return err
		}

		for i, s := range g.slabs {
			endVal := "NULL"
			if s.endUnits != nil {
				endVal = strconv.FormatInt(*s.endUnits, 10)
			}
			err := w(`INSERT INTO tariff_slabs (id, tariff_id, slab_order, start_units, end_units, rate_per_unit, created_at)
VALUES ('%s', '%s', %d, %d, %s, %s, now());`,
				uuid.New(), tariffID, i+1, s.startUnits, endVal, s.rate)
			if err != nil {
				return err
			}
		}
	}

	return w("COMMIT;")
}
