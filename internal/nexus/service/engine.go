package service

import (
	"time"

	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"

	"github.com/nexorahq/nexora/internal/nexus/domain"
)

// stateOutcome is the result of replaying one state's transactions
// against its rule versions.
type stateOutcome struct {
	State            string
	TotalRevenue     float64
	TransactionCount int64
	CrossedAt        *time.Time
	CrossedBy        *domain.Trigger
	ThresholdRevenue *float64
	ThresholdTxns    *int64
	TaxablePostCross float64
	InvalidDates     int
}

// evaluateState replays events for a single state in chronological
// order and detects the first threshold crossing. The input slice must
// already be ordered by transaction date then id; crossing is monotonic,
// so evaluation stops attributing once the first trigger fires.
func evaluateState(state string, events []transactiondomain.SalesEvent, rules ruledomain.RuleSet) stateOutcome {
	out := stateOutcome{State: state}

	// All-time aggregates include rows with unparseable dates.
	dated := make([]transactiondomain.SalesEvent, 0, len(events))
	for i := range events {
		out.TotalRevenue += events[i].Amount
		out.TransactionCount++
		if events[i].DateValid {
			dated = append(dated, events[i])
		} else {
			out.InvalidDates++
		}
	}

	if state == transactiondomain.StateUnknown {
		return out
	}

	crossIdx := -1
	for i := range dated {
		ev := &dated[i]
		rule := rules.ResolveAsOf(state, ev.TransactionDate)
		if rule == nil {
			continue
		}

		winRevenue, winCount := windowTotals(dated[:i+1], rule, ev.TransactionDate)

		revHit := rule.RevenueThreshold != nil && winRevenue > *rule.RevenueThreshold
		cntHit := rule.TransactionThreshold != nil && winCount >= *rule.TransactionThreshold
		if !revHit && !cntHit {
			continue
		}

		crossedAt := ev.TransactionDate
		out.CrossedAt = &crossedAt
		out.CrossedBy = triggerFor(revHit, cntHit)
		out.ThresholdRevenue = rule.RevenueThreshold
		out.ThresholdTxns = rule.TransactionThreshold
		crossIdx = i
		break
	}

	if crossIdx >= 0 {
		for i := crossIdx + 1; i < len(dated); i++ {
			if dated[i].Taxable() {
				out.TaxablePostCross += dated[i].Amount
			}
		}
	}

	return out
}

// windowTotals sums the events falling inside the rule's evaluation
// window ending at the given date. The slice is chronological, so the
// scan walks backwards and stops at the window boundary.
func windowTotals(history []transactiondomain.SalesEvent, rule *ruledomain.NexusRule, asOf time.Time) (float64, int64) {
	var revenue float64
	var count int64

	for i := len(history) - 1; i >= 0; i-- {
		ev := &history[i]
		if !inWindow(rule.EvaluationPeriodType, ev.TransactionDate, asOf) {
			break
		}
		if ev.MarketplaceFacilitator && !rule.IncludesMarketplaceSales {
			continue
		}
		if ev.ExemptionType != transactiondomain.ExemptionNonExempt && !rule.IncludesExemptSales {
			continue
		}
		revenue += ev.Amount
		count++
	}
	return revenue, count
}

func inWindow(period ruledomain.EvaluationPeriodType, date, asOf time.Time) bool {
	switch period {
	case ruledomain.PeriodRolling12Months:
		return date.After(asOf.AddDate(0, 0, -365))
	default:
		// calendar_year and previous_or_current_year both reset the
		// running totals on January 1st.
		return date.Year() == asOf.Year()
	}
}

func triggerFor(revHit, cntHit bool) *domain.Trigger {
	var t domain.Trigger
	switch {
	case revHit && cntHit:
		t = domain.TriggerBoth
	case revHit:
		t = domain.TriggerRevenue
	default:
		t = domain.TriggerTransactions
	}
	return &t
}
