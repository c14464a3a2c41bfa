// Package domain contains US state reference data models.
package domain

import "time"

// State is static reference data for a US taxing jurisdiction.
type State struct {
	Code                        string    `json:"code" gorm:"type:char(2);primaryKey;column:code"`
	Name                        string    `json:"name" gorm:"type:text;not null"`
	Region                      *string   `json:"region,omitempty" gorm:"type:text"`
	HasEconomicNexus            bool      `json:"has_economic_nexus" gorm:"not null;default:true"`
	MarketplaceFacilitatorRules bool      `json:"marketplace_facilitator_rules" gorm:"not null;default:true"`
	CreatedAt                   time.Time `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (State) TableName() string { return "states" }

// StateTaxRate is the combined state plus average local sales-tax rate
// used for liability estimates. Rates are fractions (0.0825 for 8.25%).
type StateTaxRate struct {
	State              string    `json:"state" gorm:"type:char(2);primaryKey;column:state"`
	CombinedRate       float64   `json:"combined_rate" gorm:"not null"`
	EffectiveStartDate time.Time `json:"effective_start_date" gorm:"type:date;not null"`
	CreatedAt          time.Time `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (StateTaxRate) TableName() string { return "state_tax_rates" }
