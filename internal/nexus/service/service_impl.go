// Package service implements the economic nexus determination engine.
package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nexorahq/nexora/internal/clock"
	"github.com/nexorahq/nexora/internal/nexus/domain"
	referencedomain "github.com/nexorahq/nexora/internal/reference/domain"
	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
)

type ServiceParam struct {
	fx.In

	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repository   domain.Repository
	Transactions transactiondomain.Repository
	Rules        ruledomain.Resolver
	Reference    referencedomain.Repository
}

type service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	txns  transactiondomain.Repository
	rules ruledomain.Resolver
	ref   referencedomain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &service{
		log:   p.Log.Named("nexus.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repository,
		txns:  p.Transactions,
		rules: p.Rules,
		ref:   p.Reference,
	}
}

// Recompute is a full from-scratch replay. Because the transaction
// store is append-only, replaying always reproduces or extends prior
// results; a state that crossed can never uncross.
func (s *service) Recompute(ctx context.Context, orgID snowflake.ID) (*domain.RecomputeSummary, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	events, err := s.txns.OrderedScan(ctx, orgID)
	if err != nil {
		return nil, err
	}

	groups, states := groupByState(events)

	ruleSet, err := s.rules.RuleSetFor(ctx, states)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	summary := &domain.RecomputeSummary{
		OrgID:         orgID.String(),
		StatesCrossed: []string{},
	}
	statuses := make([]*domain.NexusStatus, 0, len(states))

	for _, state := range states {
		out := evaluateState(state, groups[state], ruleSet)
		summary.InvalidDates += out.InvalidDates

		if state == transactiondomain.StateUnknown {
			summary.UnknownStates = out.TransactionCount
		} else {
			summary.StatesAnalyzed++
		}

		status := &domain.NexusStatus{
			ID:                    s.genID.Generate(),
			OrgID:                 orgID,
			State:                 out.State,
			TotalRevenue:          out.TotalRevenue,
			TransactionCount:      out.TransactionCount,
			CrossedAt:             out.CrossedAt,
			CrossedBy:             out.CrossedBy,
			ThresholdRevenue:      out.ThresholdRevenue,
			ThresholdTransactions: out.ThresholdTxns,
			TaxablePostCross:      out.TaxablePostCross,
			LastCalculated:        now,
		}

		if out.CrossedAt != nil {
			summary.StatesCrossed = append(summary.StatesCrossed, state)
			rate, err := s.ref.TaxRateByState(ctx, state)
			if err != nil {
				return nil, err
			}
			if rate != nil {
				liability := out.TaxablePostCross * rate.CombinedRate
				status.EstLiability = &liability
			}
		}

		statuses = append(statuses, status)
	}

	if err := s.repo.UpsertAll(ctx, statuses); err != nil {
		return nil, err
	}

	for _, st := range statuses {
		summary.Statuses = append(summary.Statuses, *st)
	}

	s.log.Info("nexus recomputed",
		zap.String("org_id", orgID.String()),
		zap.Int("states_analyzed", summary.StatesAnalyzed),
		zap.Strings("states_crossed", summary.StatesCrossed),
		zap.Int("events", len(events)),
	)
	return summary, nil
}

func (s *service) ListStatus(ctx context.Context, orgID snowflake.ID) ([]domain.NexusStatus, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListByOrg(ctx, orgID)
}

// groupByState splits an ordered scan into per-state slices. The scan
// is ordered by state first, so each group stays chronological and the
// returned state list preserves scan order.
func groupByState(events []transactiondomain.SalesEvent) (map[string][]transactiondomain.SalesEvent, []string) {
	groups := make(map[string][]transactiondomain.SalesEvent)
	states := make([]string, 0)
	for i := range events {
		state := events[i].ShipToState
		if _, ok := groups[state]; !ok {
			states = append(states, state)
		}
		groups[state] = append(groups[state], events[i])
	}
	return groups, states
}
