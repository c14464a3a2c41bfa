package service

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexorahq/nexora/internal/nexus/domain"
	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type eventOpt func(*transactiondomain.SalesEvent)

func facilitator() eventOpt {
	return func(e *transactiondomain.SalesEvent) { e.MarketplaceFacilitator = true }
}

func exempt() eventOpt {
	return func(e *transactiondomain.SalesEvent) { e.ExemptionType = "resale" }
}

func undated() eventOpt {
	return func(e *transactiondomain.SalesEvent) { e.DateValid = false }
}

var nextEventID int64

func event(state string, date time.Time, amount float64, opts ...eventOpt) transactiondomain.SalesEvent {
	nextEventID++
	e := transactiondomain.SalesEvent{
		ID:              snowflake.ID(nextEventID),
		TransactionDate: date,
		DateValid:       true,
		Amount:          amount,
		ExemptionType:   transactiondomain.ExemptionNonExempt,
		ShipToState:     state,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func rule(state string, revenue float64, txns int64, period ruledomain.EvaluationPeriodType, opts ...func(*ruledomain.NexusRule)) ruledomain.NexusRule {
	r := ruledomain.NexusRule{
		State:                    state,
		EvaluationPeriodType:     period,
		EffectiveStartDate:       day(2019, time.January, 1),
		IncludesMarketplaceSales: true,
		IncludesExemptSales:      true,
	}
	if revenue > 0 {
		r.RevenueThreshold = &revenue
	}
	if txns > 0 {
		r.TransactionThreshold = &txns
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func rules(rs ...ruledomain.NexusRule) ruledomain.RuleSet {
	set := make(ruledomain.RuleSet)
	for _, r := range rs {
		set[r.State] = append(set[r.State], r)
	}
	return set
}

func TestEvaluateState_RevenueCrossing(t *testing.T) {
	events := []transactiondomain.SalesEvent{
		event("NY", day(2025, time.January, 1), 60000),
		event("NY", day(2025, time.January, 2), 50000),
	}
	out := evaluateState("NY", events, rules(rule("NY", 100000, 0, ruledomain.PeriodCalendarYear)))

	require.NotNil(t, out.CrossedAt)
	assert.Equal(t, day(2025, time.January, 2), *out.CrossedAt)
	require.NotNil(t, out.CrossedBy)
	assert.Equal(t, domain.TriggerRevenue, *out.CrossedBy)
	assert.Equal(t, 110000.0, out.TotalRevenue)
	assert.Equal(t, int64(2), out.TransactionCount)
	assert.Equal(t, 0.0, out.TaxablePostCross)
	require.NotNil(t, out.ThresholdRevenue)
	assert.Equal(t, 100000.0, *out.ThresholdRevenue)
}

func TestEvaluateState_ExactThresholdDoesNotCross(t *testing.T) {
	events := []transactiondomain.SalesEvent{
		event("NY", day(2025, time.January, 1), 100000),
	}
	out := evaluateState("NY", events, rules(rule("NY", 100000, 0, ruledomain.PeriodCalendarYear)))

	assert.Nil(t, out.CrossedAt)
	assert.Nil(t, out.CrossedBy)
}

func TestEvaluateState_TransactionCountCrossesInclusive(t *testing.T) {
	events := []transactiondomain.SalesEvent{
		event("GA", day(2025, time.February, 1), 10),
		event("GA", day(2025, time.February, 2), 10),
	}
	out := evaluateState("GA", events, rules(rule("GA", 0, 2, ruledomain.PeriodCalendarYear)))

	require.NotNil(t, out.CrossedAt)
	assert.Equal(t, day(2025, time.February, 2), *out.CrossedAt)
	assert.Equal(t, domain.TriggerTransactions, *out.CrossedBy)
}

func TestEvaluateState_BothTriggersSameEvent(t *testing.T) {
	events := []transactiondomain.SalesEvent{
		event("CT", day(2025, time.March, 1), 60000),
		event("CT", day(2025, time.March, 2), 60000),
	}
	out := evaluateState("CT", events, rules(rule("CT", 100000, 2, ruledomain.PeriodCalendarYear)))

	require.NotNil(t, out.CrossedBy)
	assert.Equal(t, domain.TriggerBoth, *out.CrossedBy)
}

func TestEvaluateState_CalendarYearResets(t *testing.T) {
	events := []transactiondomain.SalesEvent{
		event("NY", day(2024, time.December, 30), 60000),
		event("NY", day(2025, time.January, 2), 50000),
	}
	out := evaluateState("NY", events, rules(rule("NY", 100000, 0, ruledomain.PeriodCalendarYear)))

	assert.Nil(t, out.CrossedAt)
	assert.Equal(t, 110000.0, out.TotalRevenue)
}

func TestEvaluateState_RollingWindowSpansYearBoundary(t *testing.T) {
	set := rules(rule("TX", 100000, 0, ruledomain.PeriodRolling12Months))

	crossed := evaluateState("TX", []transactiondomain.SalesEvent{
		event("TX", day(2024, time.June, 1), 60000),
		event("TX", day(2025, time.January, 2), 50000),
	}, set)
	require.NotNil(t, crossed.CrossedAt)
	assert.Equal(t, day(2025, time.January, 2), *crossed.CrossedAt)

	stale := evaluateState("TX", []transactiondomain.SalesEvent{
		event("TX", day(2024, time.January, 1), 60000),
		event("TX", day(2025, time.June, 1), 50000),
	}, set)
	assert.Nil(t, stale.CrossedAt)
}

func TestEvaluateState_TaxablePostCross(t *testing.T) {
	events := []transactiondomain.SalesEvent{
		event("NY", day(2025, time.January, 1), 110000),
		event("NY", day(2025, time.January, 2), 200),
		event("NY", day(2025, time.January, 3), 300, facilitator()),
		event("NY", day(2025, time.January, 4), 400, exempt()),
		event("NY", day(2025, time.January, 5), 500),
	}
	out := evaluateState("NY", events, rules(rule("NY", 100000, 0, ruledomain.PeriodCalendarYear)))

	require.NotNil(t, out.CrossedAt)
	assert.Equal(t, day(2025, time.January, 1), *out.CrossedAt)
	// The crossing transaction itself is excluded; facilitator and
	// exempt sales never count as taxable.
	assert.Equal(t, 700.0, out.TaxablePostCross)
}

func TestEvaluateState_RuleVersioning(t *testing.T) {
	end := day(2025, time.January, 1)
	old := rule("ME", 100000, 200, ruledomain.PeriodCalendarYear, func(r *ruledomain.NexusRule) {
		r.EffectiveEndDate = &end
	})
	current := rule("ME", 100000, 0, ruledomain.PeriodCalendarYear, func(r *ruledomain.NexusRule) {
		r.EffectiveStartDate = end
	})
	set := rules(old, current)

	resolved := set.ResolveAsOf("ME", day(2024, time.June, 1))
	require.NotNil(t, resolved)
	assert.NotNil(t, resolved.TransactionThreshold)

	resolved = set.ResolveAsOf("ME", day(2025, time.June, 1))
	require.NotNil(t, resolved)
	assert.Nil(t, resolved.TransactionThreshold)
}

func TestEvaluateState_FacilitatorExcludedWhenRuleSaysSo(t *testing.T) {
	r := rule("PA", 100000, 0, ruledomain.PeriodCalendarYear, func(r *ruledomain.NexusRule) {
		r.IncludesMarketplaceSales = false
	})
	events := []transactiondomain.SalesEvent{
		event("PA", day(2025, time.January, 1), 90000, facilitator()),
		event("PA", day(2025, time.January, 2), 90000, facilitator()),
	}
	out := evaluateState("PA", events, rules(r))
	assert.Nil(t, out.CrossedAt)

	included := evaluateState("PA", events, rules(rule("PA", 100000, 0, ruledomain.PeriodCalendarYear)))
	assert.NotNil(t, included.CrossedAt)
}

func TestEvaluateState_ExemptExcludedWhenRuleSaysSo(t *testing.T) {
	r := rule("OH", 100000, 0, ruledomain.PeriodCalendarYear, func(r *ruledomain.NexusRule) {
		r.IncludesExemptSales = false
	})
	events := []transactiondomain.SalesEvent{
		event("OH", day(2025, time.January, 1), 90000, exempt()),
		event("OH", day(2025, time.January, 2), 90000),
	}
	out := evaluateState("OH", events, rules(r))
	assert.Nil(t, out.CrossedAt)
}

func TestEvaluateState_InvalidDatesCountedButNotEvaluated(t *testing.T) {
	events := []transactiondomain.SalesEvent{
		event("NY", day(2025, time.January, 1), 90000),
		event("NY", day(2025, time.January, 2), 90000, undated()),
	}
	out := evaluateState("NY", events, rules(rule("NY", 100000, 0, ruledomain.PeriodCalendarYear)))

	assert.Nil(t, out.CrossedAt)
	assert.Equal(t, 180000.0, out.TotalRevenue)
	assert.Equal(t, int64(2), out.TransactionCount)
	assert.Equal(t, 1, out.InvalidDates)
}

func TestEvaluateState_UnknownStateNeverCrosses(t *testing.T) {
	events := []transactiondomain.SalesEvent{
		event(transactiondomain.StateUnknown, day(2025, time.January, 1), 900000),
	}
	out := evaluateState(transactiondomain.StateUnknown, events, rules())

	assert.Nil(t, out.CrossedAt)
	assert.Equal(t, 900000.0, out.TotalRevenue)
}

func TestEvaluateState_NoRuleForState(t *testing.T) {
	events := []transactiondomain.SalesEvent{
		event("OR", day(2025, time.January, 1), 900000),
	}
	out := evaluateState("OR", events, rules())

	assert.Nil(t, out.CrossedAt)
}

func TestEvaluateState_MonotonicAfterMoreData(t *testing.T) {
	set := rules(rule("NY", 100000, 0, ruledomain.PeriodCalendarYear))
	base := []transactiondomain.SalesEvent{
		event("NY", day(2025, time.January, 1), 60000),
		event("NY", day(2025, time.January, 2), 50000),
	}
	first := evaluateState("NY", base, set)
	require.NotNil(t, first.CrossedAt)

	extended := append(base, event("NY", day(2026, time.July, 1), 10))
	second := evaluateState("NY", extended, set)
	require.NotNil(t, second.CrossedAt)
	assert.Equal(t, *first.CrossedAt, *second.CrossedAt)
	assert.Equal(t, *first.CrossedBy, *second.CrossedBy)
}
