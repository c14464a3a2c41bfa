package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
	"github.com/nexorahq/nexora/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ruledomain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rule *ruledomain.NexusRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*ruledomain.NexusRule, error) {
	var rule ruledomain.NexusRule
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rule).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repository) List(ctx context.Context, filter ruledomain.ListRequest) ([]ruledomain.NexusRule, error) {
	var items []ruledomain.NexusRule
	stmt := r.db.WithContext(ctx).Model(&ruledomain.NexusRule{})

	if filter.State != "" {
		stmt = stmt.Where("state = ?", filter.State)
	}
	if filter.ActiveOn != nil {
		stmt = stmt.Where("effective_start_date <= ?", *filter.ActiveOn).
			Where("effective_end_date IS NULL OR effective_end_date > ?", *filter.ActiveOn)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"state":                true,
		"effective_start_date": true,
		"created_at":           true,
	})).Apply(stmt)
	stmt = stmt.Order("state ASC, effective_start_date ASC")

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListByStates(ctx context.Context, states []string) ([]ruledomain.NexusRule, error) {
	if len(states) == 0 {
		return nil, nil
	}
	var items []ruledomain.NexusRule
	err := r.db.WithContext(ctx).
		Where("state IN ?", states).
		Order("state ASC, effective_start_date ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, rule *ruledomain.NexusRule) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE nexus_rules
		 SET revenue_threshold = ?, transaction_threshold = ?, evaluation_period_type = ?,
		     effective_end_date = ?, includes_marketplace_sales = ?, includes_exempt_sales = ?, notes = ?
		 WHERE id = ?`,
		rule.RevenueThreshold,
		rule.TransactionThreshold,
		rule.EvaluationPeriodType,
		rule.EffectiveEndDate,
		rule.IncludesMarketplaceSales,
		rule.IncludesExemptSales,
		rule.Notes,
		rule.ID,
	).Error
}
