// Package domain contains the derived per-state nexus status model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Trigger identifies which threshold fired at the crossing point.
type Trigger string

const (
	TriggerRevenue      Trigger = "revenue"
	TriggerTransactions Trigger = "transactions"
	TriggerBoth         Trigger = "revenue+transactions"
)

// NexusStatus is the latest computed exposure for one (org, state)
// pair. Rows are recomputed from scratch and overwritten wholesale;
// there is no incremental patching and no history.
type NexusStatus struct {
	ID    snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID snowflake.ID `json:"org_id" gorm:"not null;uniqueIndex:uq_nexus_status_org_state"`
	State string       `json:"state" gorm:"type:text;not null;uniqueIndex:uq_nexus_status_org_state"`

	TotalRevenue     float64 `json:"total_revenue" gorm:"not null;default:0"`
	TransactionCount int64   `json:"transaction_count" gorm:"not null;default:0"`

	CrossedAt *time.Time `json:"crossed_at,omitempty"`
	CrossedBy *Trigger   `json:"crossed_by,omitempty" gorm:"type:text"`

	// Snapshot of the rule version that fired, for display.
	ThresholdRevenue      *float64 `json:"threshold_revenue,omitempty"`
	ThresholdTransactions *int64   `json:"threshold_transactions,omitempty"`

	TaxablePostCross float64  `json:"taxable_post_cross" gorm:"not null;default:0"`
	EstLiability     *float64 `json:"est_liability,omitempty"`

	LastCalculated time.Time `json:"last_calculated" gorm:"not null"`
}

func (NexusStatus) TableName() string { return "nexus_status" }

// RecomputeSummary reports one full engine run for an organization.
type RecomputeSummary struct {
	OrgID          string        `json:"org_id"`
	StatesAnalyzed int           `json:"states_analyzed"`
	StatesCrossed  []string      `json:"states_crossed"`
	Statuses       []NexusStatus `json:"statuses"`
	InvalidDates   int           `json:"invalid_dates"`
	UnknownStates  int64         `json:"unknown_state_rows"`
}
