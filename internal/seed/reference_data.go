package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"

	referencedomain "github.com/nexorahq/nexora/internal/reference/domain"
	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
)

type stateSeed struct {
	code   string
	name   string
	region string
	// combinedRate is zero for the no-sales-tax states; they get no
	// rate row and no threshold rule.
	combinedRate float64

	revenueThreshold     float64
	transactionThreshold int64
	period               ruledomain.EvaluationPeriodType
}

var (
	calYear  = ruledomain.PeriodCalendarYear
	prevCur  = ruledomain.PeriodPreviousOrCurrentYear
	rolling  = ruledomain.PeriodRolling12Months
	ruleFrom = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)
	rateFrom = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// stateSeeds carries post-Wayfair economic nexus thresholds and the
// combined state plus average local rate per state. Thresholds with a
// zero transaction count mean the state has no count trigger.
var stateSeeds = []stateSeed{
	{"AL", "Alabama", "South", 0.0929, 250000, 0, prevCur},
	{"AK", "Alaska", "West", 0.0182, 100000, 0, prevCur},
	{"AZ", "Arizona", "West", 0.0838, 100000, 0, calYear},
	{"AR", "Arkansas", "South", 0.0948, 100000, 200, prevCur},
	{"CA", "California", "West", 0.0885, 500000, 0, prevCur},
	{"CO", "Colorado", "West", 0.0781, 100000, 0, calYear},
	{"CT", "Connecticut", "Northeast", 0.0635, 100000, 200, rolling},
	{"DE", "Delaware", "South", 0, 0, 0, ""},
	{"DC", "District of Columbia", "South", 0.0600, 100000, 200, prevCur},
	{"FL", "Florida", "South", 0.0700, 100000, 0, prevCur},
	{"GA", "Georgia", "South", 0.0738, 100000, 200, prevCur},
	{"HI", "Hawaii", "West", 0.0450, 100000, 200, prevCur},
	{"ID", "Idaho", "West", 0.0603, 100000, 0, prevCur},
	{"IL", "Illinois", "Midwest", 0.0886, 100000, 200, rolling},
	{"IN", "Indiana", "Midwest", 0.0700, 100000, 0, prevCur},
	{"IA", "Iowa", "Midwest", 0.0694, 100000, 0, prevCur},
	{"KS", "Kansas", "Midwest", 0.0874, 100000, 0, prevCur},
	{"KY", "Kentucky", "South", 0.0600, 100000, 200, prevCur},
	{"LA", "Louisiana", "South", 0.0956, 100000, 0, prevCur},
	{"ME", "Maine", "Northeast", 0.0550, 100000, 0, prevCur},
	{"MD", "Maryland", "South", 0.0600, 100000, 200, prevCur},
	{"MA", "Massachusetts", "Northeast", 0.0625, 100000, 0, calYear},
	{"MI", "Michigan", "Midwest", 0.0600, 100000, 200, prevCur},
	{"MN", "Minnesota", "Midwest", 0.0804, 100000, 200, rolling},
	{"MS", "Mississippi", "South", 0.0706, 250000, 0, rolling},
	{"MO", "Missouri", "Midwest", 0.0829, 100000, 0, rolling},
	{"MT", "Montana", "West", 0, 0, 0, ""},
	{"NE", "Nebraska", "Midwest", 0.0697, 100000, 200, calYear},
	{"NV", "Nevada", "West", 0.0824, 100000, 200, prevCur},
	{"NH", "New Hampshire", "Northeast", 0, 0, 0, ""},
	{"NJ", "New Jersey", "Northeast", 0.0660, 100000, 200, calYear},
	{"NM", "New Mexico", "West", 0.0762, 100000, 0, calYear},
	{"NY", "New York", "Northeast", 0.0853, 500000, 100, rolling},
	{"NC", "North Carolina", "South", 0.0700, 100000, 0, prevCur},
	{"ND", "North Dakota", "Midwest", 0.0704, 100000, 0, prevCur},
	{"OH", "Ohio", "Midwest", 0.0724, 100000, 200, calYear},
	{"OK", "Oklahoma", "South", 0.0899, 100000, 0, prevCur},
	{"OR", "Oregon", "West", 0, 0, 0, ""},
	{"PA", "Pennsylvania", "Northeast", 0.0634, 100000, 0, rolling},
	{"RI", "Rhode Island", "Northeast", 0.0700, 100000, 200, calYear},
	{"SC", "South Carolina", "South", 0.0750, 100000, 0, calYear},
	{"SD", "South Dakota", "Midwest", 0.0641, 100000, 0, prevCur},
	{"TN", "Tennessee", "South", 0.0955, 100000, 0, rolling},
	{"TX", "Texas", "South", 0.0820, 500000, 0, rolling},
	{"UT", "Utah", "West", 0.0727, 100000, 200, prevCur},
	{"VT", "Vermont", "Northeast", 0.0636, 100000, 200, rolling},
	{"VA", "Virginia", "South", 0.0575, 100000, 200, prevCur},
	{"WA", "Washington", "West", 0.0943, 100000, 0, calYear},
	{"WV", "West Virginia", "South", 0.0657, 100000, 200, prevCur},
	{"WI", "Wisconsin", "Midwest", 0.0570, 100000, 0, prevCur},
	{"WY", "Wyoming", "West", 0.0544, 100000, 0, prevCur},
}

func stateRows() []referencedomain.State {
	rows := make([]referencedomain.State, 0, len(stateSeeds))
	for _, s := range stateSeeds {
		region := s.region
		rows = append(rows, referencedomain.State{
			Code:                        s.code,
			Name:                        s.name,
			Region:                      &region,
			HasEconomicNexus:            s.revenueThreshold > 0,
			MarketplaceFacilitatorRules: s.combinedRate > 0,
		})
	}
	return rows
}

func taxRateRows() []referencedomain.StateTaxRate {
	rows := make([]referencedomain.StateTaxRate, 0, len(stateSeeds))
	for _, s := range stateSeeds {
		if s.combinedRate == 0 {
			continue
		}
		rows = append(rows, referencedomain.StateTaxRate{
			State:              s.code,
			CombinedRate:       s.combinedRate,
			EffectiveStartDate: rateFrom,
		})
	}
	return rows
}

func defaultRuleRows(node *snowflake.Node) ([]ruledomain.NexusRule, error) {
	rows := make([]ruledomain.NexusRule, 0, len(stateSeeds))
	for _, s := range stateSeeds {
		if s.revenueThreshold == 0 {
			continue
		}
		rule := ruledomain.NexusRule{
			ID:                       node.Generate(),
			State:                    s.code,
			RevenueThreshold:         f64(s.revenueThreshold),
			EvaluationPeriodType:     s.period,
			EffectiveStartDate:       ruleFrom,
			IncludesMarketplaceSales: true,
			IncludesExemptSales:      true,
			CreatedAt:                time.Now().UTC(),
		}
		if s.transactionThreshold > 0 {
			rule.TransactionThreshold = i64(s.transactionThreshold)
		}
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		rows = append(rows, rule)
	}
	return rows, nil
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
