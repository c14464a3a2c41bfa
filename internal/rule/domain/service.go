package domain

import (
	"context"
	"time"
)

// Resolver resolves the applicable rule version for a (state, date) pair.
// The nexus engine is the primary consumer.
type Resolver interface {
	// ResolveAsOf returns nil when no rule version covers the date.
	ResolveAsOf(ctx context.Context, state string, date time.Time) (*NexusRule, error)
	// RuleSetFor preloads every version for the given states so the
	// engine can resolve per-transaction without further queries.
	RuleSetFor(ctx context.Context, states []string) (RuleSet, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Disable(ctx context.Context, id string, endDate time.Time) (*Response, error)
}

// RuleSet holds preloaded rule versions keyed by state, each slice
// ordered by effective start ascending.
type RuleSet map[string][]NexusRule

// ResolveAsOf returns the version whose effective window contains the
// date; the latest qualifying effective start wins.
func (rs RuleSet) ResolveAsOf(state string, date time.Time) *NexusRule {
	versions := rs[state]
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].AppliesOn(date) {
			return &versions[i]
		}
	}
	return nil
}

type CreateRequest struct {
	State                    string         `json:"state"`
	RevenueThreshold         *float64       `json:"revenue_threshold"`
	TransactionThreshold     *int64         `json:"transaction_threshold"`
	EvaluationPeriodType     string         `json:"evaluation_period_type"`
	EffectiveStartDate       time.Time      `json:"effective_start_date"`
	EffectiveEndDate         *time.Time     `json:"effective_end_date"`
	IncludesMarketplaceSales *bool          `json:"includes_marketplace_sales"`
	IncludesExemptSales      *bool          `json:"includes_exempt_sales"`
	RuleDetails              map[string]any `json:"rule_details"`
	Notes                    *string        `json:"notes"`
	SourceURL                *string        `json:"source_url"`
}

type UpdateRequest struct {
	ID                       string     `json:"id"`
	RevenueThreshold         *float64   `json:"revenue_threshold,omitempty"`
	TransactionThreshold     *int64     `json:"transaction_threshold,omitempty"`
	EvaluationPeriodType     *string    `json:"evaluation_period_type,omitempty"`
	EffectiveEndDate         *time.Time `json:"effective_end_date,omitempty"`
	IncludesMarketplaceSales *bool      `json:"includes_marketplace_sales,omitempty"`
	IncludesExemptSales      *bool      `json:"includes_exempt_sales,omitempty"`
	Notes                    *string    `json:"notes,omitempty"`
}

type Response struct {
	ID                       string     `json:"id"`
	State                    string     `json:"state"`
	RevenueThreshold         *float64   `json:"revenue_threshold,omitempty"`
	TransactionThreshold     *int64     `json:"transaction_threshold,omitempty"`
	EvaluationPeriodType     string     `json:"evaluation_period_type"`
	EffectiveStartDate       time.Time  `json:"effective_start_date"`
	EffectiveEndDate         *time.Time `json:"effective_end_date,omitempty"`
	IncludesMarketplaceSales bool       `json:"includes_marketplace_sales"`
	IncludesExemptSales      bool       `json:"includes_exempt_sales"`
	Notes                    *string    `json:"notes,omitempty"`
	SourceURL                *string    `json:"source_url,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
}
