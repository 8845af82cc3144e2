// Package billing holds the pure tariff arithmetic: progressive
// slab-rate computation and the full bill breakdown. No I/O.
package billing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"gridbill/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ValidateSlabs checks that the slab list forms a contiguous,
// non-overlapping partition of the consumption axis starting at 0,
// ordered by slab order, with at most one unbounded slab which must be
// the last. Violations wrap domain.ErrMalformedTariff; this is a
// configuration-time check, never performed at bill time.
func ValidateSlabs(slabs []domain.TariffSlab) error {
	if len(slabs) == 0 {
		return fmt.Errorf("%w: no slabs defined", domain.ErrMalformedTariff)
	}

	ordered := sortedByOrder(slabs)

	if ordered[0].StartUnits != 0 {
		return fmt.Errorf("%w: first slab starts at %d, want 0",
			domain.ErrMalformedTariff, ordered[0].StartUnits)
	}

	for i, s := range ordered {
		if s.RatePerUnit.IsNegative() {
			return fmt.Errorf("%w: slab %d has negative rate", domain.ErrMalformedTariff, s.SlabOrder)
		}
		last := i == len(ordered)-1
		if s.EndUnits == nil {
			if !last {
				return fmt.Errorf("%w: unbounded slab %d is not the last slab",
					domain.ErrMalformedTariff, s.SlabOrder)
			}
			continue
		}
		if *s.EndUnits <= s.StartUnits {
			return fmt.Errorf("%w: slab %d ends at %d before its start %d",
				domain.ErrMalformedTariff, s.SlabOrder, *s.EndUnits, s.StartUnits)
		}
		if !last && ordered[i+1].StartUnits != *s.EndUnits+1 {
			return fmt.Errorf("%w: slab %d starts at %d, want %d (gap or overlap)",
				domain.ErrMalformedTariff, ordered[i+1].SlabOrder,
				ordered[i+1].StartUnits, *s.EndUnits+1)
		}
	}
	return nil
}

// ComputeBaseCharge walks the slabs in order and prices the given
// consumption progressively: each slab absorbs units up to its end
// threshold at its own rate, the remainder spills into the next slab.
// Units beyond every finite slab are absorbed by the unbounded final
// slab. The result is exact; rounding happens once, at the bill total.
func ComputeBaseCharge(slabs []domain.TariffSlab, units decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateSlabs(slabs); err != nil {
		return decimal.Zero, err
	}
	if units.Sign() <= 0 {
		return decimal.Zero, nil
	}

	ordered := sortedByOrder(slabs)

	charge := decimal.Zero
	remaining := units
	priced := decimal.Zero // units already absorbed by earlier slabs

	for _, s := range ordered {
		var inSlab decimal.Decimal
		if s.EndUnits == nil {
			inSlab = remaining
		} else {
			capacity := decimal.NewFromInt(*s.EndUnits).Sub(priced)
			inSlab = decimal.Min(remaining, capacity)
		}
		if inSlab.Sign() <= 0 {
			continue
		}
		charge = charge.Add(inSlab.Mul(s.RatePerUnit))
		priced = priced.Add(inSlab)
		remaining = remaining.Sub(inSlab)
		if remaining.Sign() <= 0 {
			break
		}
	}

	if remaining.Sign() > 0 {
		// Consumption exceeded every finite slab and there was no
		// unbounded slab to absorb it.
		return decimal.Zero, fmt.Errorf("%w: %s units exceed the final slab",
			domain.ErrMalformedTariff, remaining)
	}
	return charge, nil
}

// Breakdown is the monetary decomposition of a bill, each field rounded
// to 2 decimal places.
type Breakdown struct {
	BaseAmount      decimal.Decimal `json:"base_amount"`
	FixedCharges    decimal.Decimal `json:"fixed_charges"`
	ElectricityDuty decimal.Decimal `json:"electricity_duty"`
	GSTAmount       decimal.Decimal `json:"gst_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// Compute produces the full bill breakdown for a tariff and
// consumption. Duty applies to the base amount; GST applies to base +
// fixed charge + duty. The chain is computed exactly and rounded only
// when the breakdown is assembled.
func Compute(tariff *domain.Tariff, units decimal.Decimal) (*Breakdown, error) {
	base, err := ComputeBaseCharge(tariff.Slabs, units)
	if err != nil {
		return nil, err
	}

	duty := base.Mul(tariff.DutyPercent).Div(hundred)
	subtotal := base.Add(tariff.FixedCharge).Add(duty)
	gst := subtotal.Mul(tariff.GSTPercent).Div(hundred)
	total := subtotal.Add(gst)

	return &Breakdown{
		BaseAmount:      base.Round(2),
		FixedCharges:    tariff.FixedCharge.Round(2),
		ElectricityDuty: duty.Round(2),
		GSTAmount:       gst.Round(2),
		TotalAmount:     total.Round(2),
	}, nil
}

func sortedByOrder(slabs []domain.TariffSlab) []domain.TariffSlab {
	ordered := make([]domain.TariffSlab, len(slabs))
	copy(ordered, slabs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SlabOrder < ordered[j].SlabOrder
	})
	return ordered
}
