package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gridbill/internal/billing"
	"gridbill/internal/domain"
	"gridbill/internal/port"
)

// SlabInput is one slab row of a new tariff.
type SlabInput struct {
	StartUnits  int64           `json:"start_units"`
	EndUnits    *int64          `json:"end_units"`
	RatePerUnit decimal.Decimal `json:"rate_per_unit" binding:"required"`
}

// CreateTariffInput is the DTO for publishing a new rate card. Rate
// changes are always a new tariff row; existing rows are immutable.
type CreateTariffInput struct {
	Category      domain.CustomerCategory `json:"category" binding:"required"`
	FixedCharge   decimal.Decimal         `json:"fixed_charge" binding:"required"`
	DutyPercent   decimal.Decimal         `json:"duty_percent"`
	GSTPercent    decimal.Decimal         `json:"gst_percent"`
	EffectiveDate time.Time               `json:"effective_date" binding:"required"`
	ValidUntil    *time.Time              `json:"valid_until"`
	Slabs         []SlabInput             `json:"slabs" binding:"required,min=1"`
}

// TariffService defines the rate card management contract.
type TariffService interface {
	Create(ctx context.Context, input CreateTariffInput) (*domain.Tariff, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tariff, error)
	List(ctx context.Context, offset, limit int) ([]domain.Tariff, int, error)
	// GetActiveTariff resolves the single tariff in force for a category
	// on a date. Zero matches is ErrNoActiveTariff; more than one is
	// ErrTariffOverlap, a configuration fault surfaced loudly rather
	// than resolved by precedence.
	GetActiveTariff(ctx context.Context, category domain.CustomerCategory, asOf time.Time) (*domain.Tariff, error)
}

type tariffService struct {
	repo port.TariffRepository
}

// NewTariffService creates a new TariffService implementation.
func NewTariffService(repo port.TariffRepository) TariffService {
	return &tariffService{repo: repo}
}

func (s *tariffService) Create(ctx context.Context, input CreateTariffInput) (*domain.Tariff, error) {
	if !input.Category.IsValid() {
		return nil, fmt.Errorf("tariff.Create: invalid category %q", input.Category)
	}
	if input.FixedCharge.IsNegative() || input.DutyPercent.IsNegative() || input.GSTPercent.IsNegative() {
		return nil, fmt.Errorf("%w: negative charge component", domain.ErrMalformedTariff)
	}

	tariffID := uuid.New()
	slabs := make([]domain.TariffSlab, len(input.Slabs))
	for i, in := range input.Slabs {
		slabs[i] = domain.TariffSlab{
			ID:          uuid.New(),
			TariffID:    tariffID,
			SlabOrder:   i + 1,
			StartUnits:  in.StartUnits,
			EndUnits:    in.EndUnits,
			RatePerUnit: in.RatePerUnit,
		}
	}

	// Malformed slab lists are rejected here, at configuration time.
	// Bill generation assumes stored slabs are well-formed.
	if err := billing.ValidateSlabs(slabs); err != nil {
		return nil, err
	}

	tariff := &domain.Tariff{
		ID:            tariffID,
		Category:      input.Category,
		FixedCharge:   input.FixedCharge,
		DutyPercent:   input.DutyPercent,
		GSTPercent:    input.GSTPercent,
		EffectiveDate: input.EffectiveDate.UTC(),
		ValidUntil:    input.ValidUntil,
		Status:        domain.TariffActive,
		Slabs:         slabs,
	}
	if err := s.repo.Create(ctx, tariff); err != nil {
		return nil, err
	}
	return tariff, nil
}

func (s *tariffService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tariff, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *tariffService) List(ctx context.Context, offset, limit int) ([]domain.Tariff, int, error) {
	return s.repo.List(ctx, offset, limit)
}

func (s *tariffService) GetActiveTariff(ctx context.Context, category domain.CustomerCategory, asOf time.Time) (*domain.Tariff, error) {
	tariffs, err := s.repo.FindForDate(ctx, category, asOf)
	if err != nil {
		return nil, err
	}
	switch len(tariffs) {
	case 0:
		return nil, fmt.Errorf("%w: category %s as of %s",
			domain.ErrNoActiveTariff, category, asOf.Format("2006-01-02"))
	case 1:
		return &tariffs[0], nil
	default:
		return nil, fmt.Errorf("%w: %d tariffs cover category %s on %s",
			domain.ErrTariffOverlap, len(tariffs), category, asOf.Format("2006-01-02"))
	}
}
