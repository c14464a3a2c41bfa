// Package domain contains the canonical sales transaction model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// StateUnknown buckets rows whose destination state was missing or
// unparseable. The bucket is tracked for aggregates and flagged for
// manual review but never evaluated for nexus crossing.
const StateUnknown = "UNKNOWN"

// ExemptionNonExempt marks a transaction that counts as taxable revenue.
const ExemptionNonExempt = "non_exempt"

// SalesEvent is a single canonical sales transaction owned by one
// organization. Amounts are already normalized: currency symbols and
// thousands separators stripped, malformed or negative input clamped
// to zero.
type SalesEvent struct {
	ID    snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID snowflake.ID `json:"org_id" gorm:"not null;uniqueIndex:uq_sales_events_org_tx;index:idx_sales_events_org_state_date,priority:1"`

	TransactionID   string    `json:"transaction_id" gorm:"type:text;not null;uniqueIndex:uq_sales_events_org_tx"`
	TransactionDate time.Time `json:"transaction_date" gorm:"not null;index:idx_sales_events_org_state_date,priority:3"`
	// DateValid is false when the source date failed to parse; such rows
	// are excluded from chronological crossing evaluation.
	DateValid       bool   `json:"date_valid" gorm:"not null;default:true"`
	TransactionType string `json:"transaction_type" gorm:"type:text;not null;default:sale"`

	Amount   float64 `json:"amount" gorm:"not null;default:0"`
	Shipping float64 `json:"shipping" gorm:"not null;default:0"`
	SalesTax float64 `json:"sales_tax" gorm:"not null;default:0"`
	Currency string  `json:"currency" gorm:"type:text;not null;default:USD"`

	Provider               string  `json:"provider" gorm:"type:text;not null;default:unknown"`
	MarketplaceFacilitator bool    `json:"marketplace_facilitator" gorm:"not null;default:false"`
	CustomerID             *string `json:"customer_id,omitempty" gorm:"type:text"`
	ExemptionType          string  `json:"exemption_type" gorm:"type:text;not null;default:non_exempt"`

	ShipToState string  `json:"ship_to_state" gorm:"type:text;not null;default:UNKNOWN;index:idx_sales_events_org_state_date,priority:2"`
	ShipToZip   *string `json:"ship_to_zip,omitempty" gorm:"type:text"`
	ShipToCity  *string `json:"ship_to_city,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SalesEvent) TableName() string { return "sales_events" }

// Taxable reports whether the event counts toward post-crossing taxable
// revenue: exempt and facilitator-collected sales never do.
func (e *SalesEvent) Taxable() bool {
	return e.ExemptionType == ExemptionNonExempt && !e.MarketplaceFacilitator
}

// StateAggregate is the all-time revenue/count rollup for one state.
type StateAggregate struct {
	State            string  `json:"state"`
	TotalRevenue     float64 `json:"total_revenue"`
	TransactionCount int64   `json:"transaction_count"`
}
