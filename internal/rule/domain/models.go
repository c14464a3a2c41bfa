// Package domain contains the versioned per-state nexus threshold rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EvaluationPeriodType selects which transactions are summed when a
// transaction is tested against a rule.
type EvaluationPeriodType string

const (
	// PeriodCalendarYear resets the running totals every January 1st.
	PeriodCalendarYear EvaluationPeriodType = "calendar_year"
	// PeriodRolling12Months sums the trailing 365 days.
	PeriodRolling12Months EvaluationPeriodType = "rolling_12_months"
	// PeriodPreviousOrCurrentYear evaluates each calendar year
	// independently; operationally identical to calendar_year for
	// crossing detection.
	PeriodPreviousOrCurrentYear EvaluationPeriodType = "previous_or_current_year"
)

func (p EvaluationPeriodType) Valid() bool {
	switch p {
	case PeriodCalendarYear, PeriodRolling12Months, PeriodPreviousOrCurrentYear:
		return true
	default:
		return false
	}
}

// NexusRule is one effective-dated version of a state's economic nexus
// thresholds. Either threshold may be nil, which disables that trigger.
type NexusRule struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	State string       `gorm:"type:char(2);not null;index:idx_nexus_rules_state_effective"`

	RevenueThreshold     *float64 `gorm:"column:revenue_threshold"`
	TransactionThreshold *int64   `gorm:"column:transaction_threshold"`

	EvaluationPeriodType EvaluationPeriodType `gorm:"type:text;not null"`

	EffectiveStartDate time.Time  `gorm:"type:date;not null;index:idx_nexus_rules_state_effective"`
	EffectiveEndDate   *time.Time `gorm:"type:date"`

	// Whether marketplace-facilitator and exempt sales count toward the
	// THRESHOLD sums. Post-crossing taxable revenue always excludes them.
	IncludesMarketplaceSales bool `gorm:"not null;default:true"`
	IncludesExemptSales      bool `gorm:"not null;default:true"`

	RuleDetails datatypes.JSONMap `gorm:"type:jsonb"`
	Notes       *string           `gorm:"type:text"`
	SourceURL   *string           `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (NexusRule) TableName() string { return "nexus_rules" }

func (r *NexusRule) Validate() error {
	if len(r.State) != 2 {
		return ErrInvalidState
	}
	if r.RevenueThreshold == nil && r.TransactionThreshold == nil {
		return ErrMissingThreshold
	}
	if r.RevenueThreshold != nil && *r.RevenueThreshold <= 0 {
		return ErrInvalidThreshold
	}
	if r.TransactionThreshold != nil && *r.TransactionThreshold <= 0 {
		return ErrInvalidThreshold
	}
	if !r.EvaluationPeriodType.Valid() {
		return ErrInvalidPeriodType
	}
	if r.EffectiveStartDate.IsZero() {
		return ErrInvalidEffectiveDates
	}
	if r.EffectiveEndDate != nil && !r.EffectiveEndDate.After(r.EffectiveStartDate) {
		return ErrInvalidEffectiveDates
	}
	return nil
}

// AppliesOn reports whether this rule version is active on the given date.
func (r *NexusRule) AppliesOn(date time.Time) bool {
	if date.Before(r.EffectiveStartDate) {
		return false
	}
	if r.EffectiveEndDate != nil && !date.Before(*r.EffectiveEndDate) {
		return false
	}
	return true
}
