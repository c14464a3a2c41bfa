package domain

import "context"

type Repository interface {
	ListStates(ctx context.Context) ([]State, error)
	ListTaxRates(ctx context.Context) ([]StateTaxRate, error)
	// TaxRateByState returns nil when no rate is on file for the state.
	TaxRateByState(ctx context.Context, state string) (*StateTaxRate, error)
}
