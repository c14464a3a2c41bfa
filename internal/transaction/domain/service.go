package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/nexorahq/nexora/pkg/db/pagination"
)

type ListResponse struct {
	pagination.PageInfo
	SalesEvents []SalesEvent `json:"sales_events"`
}

// BulkInsertResult reports how an append went; duplicates were skipped,
// not rejected, so re-uploading the same file is safe.
type BulkInsertResult struct {
	Inserted   int64 `json:"inserted"`
	Duplicates int64 `json:"duplicates"`
}

type Service interface {
	BulkInsert(ctx context.Context, events []*SalesEvent) (*BulkInsertResult, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	OrderedScan(ctx context.Context, orgID snowflake.ID) ([]SalesEvent, error)
	AggregateByState(ctx context.Context, orgID snowflake.ID) ([]StateAggregate, error)
	// ClearOrg purges all sales events AND nexus statuses for the org.
	ClearOrg(ctx context.Context, orgID snowflake.ID) error
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
)
