package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gridbill/internal/domain"
	"gridbill/internal/service"
	"gridbill/mocks"
)

func validSlabInputs() []service.SlabInput {
	end1, end2 := int64(100), int64(200)
	return []service.SlabInput{
		{StartUnits: 0, EndUnits: &end1, RatePerUnit: decimal.RequireFromString("4.50")},
		{StartUnits: 101, EndUnits: &end2, RatePerUnit: decimal.RequireFromString("6.00")},
		{StartUnits: 201, EndUnits: nil, RatePerUnit: decimal.RequireFromString("7.50")},
	}
}

func TestTariffService_Create_Success(t *testing.T) {
	repo := new(mocks.MockTariffRepo)
	svc := service.NewTariffService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Tariff")).Return(nil)

	tariff, err := svc.Create(context.Background(), service.CreateTariffInput{
		Category:      domain.CategoryResidential,
		FixedCharge:   decimal.RequireFromString("50.00"),
		DutyPercent:   decimal.RequireFromString("6"),
		GSTPercent:    decimal.RequireFromString("18"),
		EffectiveDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Slabs:         validSlabInputs(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TariffActive, tariff.Status)
	require.Len(t, tariff.Slabs, 3)
	assert.Equal(t, 1, tariff.Slabs[0].SlabOrder)
	assert.Equal(t, tariff.ID, tariff.Slabs[0].TariffID)
	repo.AssertExpectations(t)
}

func TestTariffService_Create_MalformedSlabsRejected(t *testing.T) {
	repo := new(mocks.MockTariffRepo)
	svc := service.NewTariffService(repo)

	end := int64(100)
	gapped := []service.SlabInput{
		{StartUnits: 0, EndUnits: &end, RatePerUnit: decimal.RequireFromString("4.50")},
		// Gap: next slab should start at 101.
		{StartUnits: 150, EndUnits: nil, RatePerUnit: decimal.RequireFromString("6.00")},
	}

	_, err := svc.Create(context.Background(), service.CreateTariffInput{
		Category:      domain.CategoryResidential,
		FixedCharge:   decimal.RequireFromString("50.00"),
		DutyPercent:   decimal.RequireFromString("6"),
		GSTPercent:    decimal.RequireFromString("18"),
		EffectiveDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Slabs:         gapped,
	})
	assert.ErrorIs(t, err, domain.ErrMalformedTariff)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTariffService_Create_NegativeFixedChargeRejected(t *testing.T) {
	repo := new(mocks.MockTariffRepo)
	svc := service.NewTariffService(repo)

	_, err := svc.Create(context.Background(), service.CreateTariffInput{
		Category:      domain.CategoryCommercial,
		FixedCharge:   decimal.RequireFromString("-10"),
		EffectiveDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Slabs:         validSlabInputs(),
	})
	assert.ErrorIs(t, err, domain.ErrMalformedTariff)
}

func TestTariffService_GetActiveTariff(t *testing.T) {
	asOf := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("exactly one match", func(t *testing.T) {
		repo := new(mocks.MockTariffRepo)
		svc := service.NewTariffService(repo)
		want := activeTariff(domain.CategoryResidential)

		repo.On("FindForDate", mock.Anything, domain.CategoryResidential, asOf).
			Return([]domain.Tariff{want}, nil)

		got, err := svc.GetActiveTariff(context.Background(), domain.CategoryResidential, asOf)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
	})

	t.Run("no match", func(t *testing.T) {
		repo := new(mocks.MockTariffRepo)
		svc := service.NewTariffService(repo)

		repo.On("FindForDate", mock.Anything, domain.CategoryAgricultural, asOf).
			Return([]domain.Tariff{}, nil)

		_, err := svc.GetActiveTariff(context.Background(), domain.CategoryAgricultural, asOf)
		assert.ErrorIs(t, err, domain.ErrNoActiveTariff)
	})

	t.Run("overlapping windows surface loudly", func(t *testing.T) {
		repo := new(mocks.MockTariffRepo)
		svc := service.NewTariffService(repo)

		repo.On("FindForDate", mock.Anything, domain.CategoryResidential, asOf).
			Return([]domain.Tariff{
				activeTariff(domain.CategoryResidential),
				activeTariff(domain.CategoryResidential),
			}, nil)

		_, err := svc.GetActiveTariff(context.Background(), domain.CategoryResidential, asOf)
		assert.ErrorIs(t, err, domain.ErrTariffOverlap)
	})
}
