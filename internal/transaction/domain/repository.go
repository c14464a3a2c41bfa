package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	// BulkInsert appends events, skipping rows whose (org_id,
	// transaction_id) already exists. Returns the number inserted.
	BulkInsert(ctx context.Context, events []*SalesEvent) (int64, error)
	// OrderedScan returns every event for the org ordered by state,
	// transaction date, then id. Snowflake ids are monotonic per node,
	// so the id tiebreak preserves arrival order.
	OrderedScan(ctx context.Context, orgID snowflake.ID) ([]SalesEvent, error)
	List(ctx context.Context, req ListRequest) ([]*SalesEvent, error)
	AggregateByState(ctx context.Context, orgID snowflake.ID) ([]StateAggregate, error)
	Count(ctx context.Context, orgID snowflake.ID) (int64, error)
	DeleteByOrg(ctx context.Context, orgID snowflake.ID) error
}

type ListRequest struct {
	OrgID     snowflake.ID
	State     string
	PageToken string
	PageSize  int
}
