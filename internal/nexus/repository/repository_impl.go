package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexorahq/nexora/internal/nexus/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

// UpsertAll overwrites each (org, state) row in place. Existing row ids
// are preserved on conflict so external references stay stable across
// recomputations.
func (r *repository) UpsertAll(ctx context.Context, statuses []*domain.NexusStatus) error {
	if len(statuses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "org_id"}, {Name: "state"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_revenue",
				"transaction_count",
				"crossed_at",
				"crossed_by",
				"threshold_revenue",
				"threshold_transactions",
				"taxable_post_cross",
				"est_liability",
				"last_calculated",
			}),
		}).
		Create(&statuses).Error
}

func (r *repository) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.NexusStatus, error) {
	var statuses []domain.NexusStatus
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("state ASC").
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}
