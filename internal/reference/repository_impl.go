package reference

import (
	"context"

	"github.com/nexorahq/nexora/internal/reference/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) ListStates(ctx context.Context) ([]domain.State, error) {
	var states []domain.State
	err := r.db.WithContext(ctx).
		Raw(`SELECT code, name, region, has_economic_nexus, marketplace_facilitator_rules, created_at
		     FROM states ORDER BY code`).
		Scan(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}

func (r *repository) ListTaxRates(ctx context.Context) ([]domain.StateTaxRate, error) {
	var rates []domain.StateTaxRate
	err := r.db.WithContext(ctx).
		Raw(`SELECT state, combined_rate, effective_start_date, created_at
		     FROM state_tax_rates ORDER BY state`).
		Scan(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *repository) TaxRateByState(ctx context.Context, state string) (*domain.StateTaxRate, error) {
	var rate domain.StateTaxRate
	err := r.db.WithContext(ctx).
		Raw(`SELECT state, combined_rate, effective_start_date, created_at
		     FROM state_tax_rates WHERE state = ?`, state).
		Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.State == "" {
		return nil, nil
	}
	return &rate, nil
}
