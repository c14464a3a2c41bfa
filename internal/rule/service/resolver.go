package service

import (
	"context"
	"strings"
	"time"

	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
	"go.uber.org/fx"
)

type ResolverParam struct {
	fx.In

	Repository ruledomain.Repository
}

type resolver struct {
	repo ruledomain.Repository
}

func NewResolver(p ResolverParam) ruledomain.Resolver {
	return &resolver{repo: p.Repository}
}

func (r *resolver) ResolveAsOf(ctx context.Context, state string, date time.Time) (*ruledomain.NexusRule, error) {
	set, err := r.RuleSetFor(ctx, []string{normalizeState(state)})
	if err != nil {
		return nil, err
	}
	return set.ResolveAsOf(normalizeState(state), date), nil
}

func (r *resolver) RuleSetFor(ctx context.Context, states []string) (ruledomain.RuleSet, error) {
	normalized := make([]string, 0, len(states))
	for _, s := range states {
		if s = normalizeState(s); len(s) == 2 {
			normalized = append(normalized, s)
		}
	}

	rules, err := r.repo.ListByStates(ctx, normalized)
	if err != nil {
		return nil, err
	}

	set := make(ruledomain.RuleSet, len(normalized))
	for _, rule := range rules {
		set[rule.State] = append(set[rule.State], rule)
	}
	return set, nil
}

func normalizeState(state string) string {
	return strings.ToUpper(strings.TrimSpace(state))
}
