package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
	"github.com/nexorahq/nexora/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) transactiondomain.Repository {
	return &repository{db: db}
}

func (r *repository) BulkInsert(ctx context.Context, events []*transactiondomain.SalesEvent) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}

	orgIDs := make([]snowflake.ID, 0, 1)
	seen := make(map[snowflake.ID]struct{}, 1)
	for _, event := range events {
		if _, ok := seen[event.OrgID]; !ok {
			seen[event.OrgID] = struct{}{}
			orgIDs = append(orgIDs, event.OrgID)
		}
	}

	// RowsAffected after ON CONFLICT DO NOTHING is dialect dependent
	// (sqlite reports conflicting rows as affected), so the inserted
	// count is derived from row counts inside the same transaction.
	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before, after int64
		if err := tx.Model(&transactiondomain.SalesEvent{}).
			Where("org_id IN ?", orgIDs).Count(&before).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}, {Name: "transaction_id"}},
			DoNothing: true,
		}).CreateInBatches(events, 500).Error; err != nil {
			return err
		}
		if err := tx.Model(&transactiondomain.SalesEvent{}).
			Where("org_id IN ?", orgIDs).Count(&after).Error; err != nil {
			return err
		}
		inserted = after - before
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *repository) OrderedScan(ctx context.Context, orgID snowflake.ID) ([]transactiondomain.SalesEvent, error) {
	var events []transactiondomain.SalesEvent
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("ship_to_state ASC, transaction_date ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) List(ctx context.Context, req transactiondomain.ListRequest) ([]*transactiondomain.SalesEvent, error) {
	stmt := r.db.WithContext(ctx).
		Model(&transactiondomain.SalesEvent{}).
		Where("org_id = ?", req.OrgID)

	if req.State != "" {
		stmt = stmt.Where("ship_to_state = ?", req.State)
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return nil, transactiondomain.ErrInvalidPageToken
		}
		if cursor.ID != "" {
			stmt = stmt.Where("id > ?", cursor.ID)
		}
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 50
	}

	var events []*transactiondomain.SalesEvent
	err := stmt.Order("id ASC").Limit(limit + 1).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) AggregateByState(ctx context.Context, orgID snowflake.ID) ([]transactiondomain.StateAggregate, error) {
	var aggregates []transactiondomain.StateAggregate
	err := r.db.WithContext(ctx).
		Raw(`SELECT ship_to_state AS state,
		            COALESCE(SUM(amount), 0) AS total_revenue,
		            COUNT(*) AS transaction_count
		     FROM sales_events
		     WHERE org_id = ?
		     GROUP BY ship_to_state
		     ORDER BY ship_to_state`, orgID).
		Scan(&aggregates).Error
	if err != nil {
		return nil, err
	}
	return aggregates, nil
}

func (r *repository) Count(ctx context.Context, orgID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&transactiondomain.SalesEvent{}).
		Where("org_id = ?", orgID).
		Count(&count).Error
	return count, err
}

func (r *repository) DeleteByOrg(ctx context.Context, orgID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Delete(&transactiondomain.SalesEvent{}).Error
}
