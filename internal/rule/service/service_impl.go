package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type ServiceParam struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Repository ruledomain.Repository
}

type service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  ruledomain.Repository
}

func NewService(p ServiceParam) ruledomain.Service {
	return &service{
		log:   p.Log.Named("rule.service"),
		genID: p.GenID,
		repo:  p.Repository,
	}
}

func (s *service) Create(ctx context.Context, req ruledomain.CreateRequest) (*ruledomain.Response, error) {
	rule := &ruledomain.NexusRule{
		ID:                       s.genID.Generate(),
		State:                    normalizeState(req.State),
		RevenueThreshold:         req.RevenueThreshold,
		TransactionThreshold:     req.TransactionThreshold,
		EvaluationPeriodType:     ruledomain.EvaluationPeriodType(req.EvaluationPeriodType),
		EffectiveStartDate:       req.EffectiveStartDate,
		EffectiveEndDate:         req.EffectiveEndDate,
		IncludesMarketplaceSales: true,
		IncludesExemptSales:      true,
		RuleDetails:              datatypes.JSONMap(req.RuleDetails),
		Notes:                    req.Notes,
		SourceURL:                req.SourceURL,
		CreatedAt:                time.Now().UTC(),
	}
	if req.IncludesMarketplaceSales != nil {
		rule.IncludesMarketplaceSales = *req.IncludesMarketplaceSales
	}
	if req.IncludesExemptSales != nil {
		rule.IncludesExemptSales = *req.IncludesExemptSales
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.log.Info("nexus rule created",
		zap.String("state", rule.State),
		zap.String("rule_id", rule.ID.String()),
	)

	resp := toResponse(rule)
	return &resp, nil
}

func (s *service) List(ctx context.Context, req ruledomain.ListRequest) ([]ruledomain.Response, error) {
	req.State = normalizeState(req.State)
	rules, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]ruledomain.Response, 0, len(rules))
	for i := range rules {
		out = append(out, toResponse(&rules[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, req ruledomain.UpdateRequest) (*ruledomain.Response, error) {
	id, err := snowflake.ParseString(req.ID)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ruledomain.ErrNotFound
	}

	if req.RevenueThreshold != nil {
		rule.RevenueThreshold = req.RevenueThreshold
	}
	if req.TransactionThreshold != nil {
		rule.TransactionThreshold = req.TransactionThreshold
	}
	if req.EvaluationPeriodType != nil {
		rule.EvaluationPeriodType = ruledomain.EvaluationPeriodType(*req.EvaluationPeriodType)
	}
	if req.EffectiveEndDate != nil {
		rule.EffectiveEndDate = req.EffectiveEndDate
	}
	if req.IncludesMarketplaceSales != nil {
		rule.IncludesMarketplaceSales = *req.IncludesMarketplaceSales
	}
	if req.IncludesExemptSales != nil {
		rule.IncludesExemptSales = *req.IncludesExemptSales
	}
	if req.Notes != nil {
		rule.Notes = req.Notes
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, err
	}

	resp := toResponse(rule)
	return &resp, nil
}

// Disable closes the rule's effective window; the version stops
// applying to transactions dated on or after endDate.
func (s *service) Disable(ctx context.Context, id string, endDate time.Time) (*ruledomain.Response, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return nil, ruledomain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ruledomain.ErrNotFound
	}

	rule.EffectiveEndDate = &endDate
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, err
	}

	resp := toResponse(rule)
	return &resp, nil
}

func toResponse(rule *ruledomain.NexusRule) ruledomain.Response {
	return ruledomain.Response{
		ID:                       rule.ID.String(),
		State:                    rule.State,
		RevenueThreshold:         rule.RevenueThreshold,
		TransactionThreshold:     rule.TransactionThreshold,
		EvaluationPeriodType:     string(rule.EvaluationPeriodType),
		EffectiveStartDate:       rule.EffectiveStartDate,
		EffectiveEndDate:         rule.EffectiveEndDate,
		IncludesMarketplaceSales: rule.IncludesMarketplaceSales,
		IncludesExemptSales:      rule.IncludesExemptSales,
		Notes:                    rule.Notes,
		SourceURL:                rule.SourceURL,
		CreatedAt:                rule.CreatedAt,
	}
}
