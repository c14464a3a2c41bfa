package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Recompute replays every transaction for the org against the
	// applicable threshold rules and overwrites the org's status rows.
	// It is idempotent and safe to re-trigger at any time.
	Recompute(ctx context.Context, orgID snowflake.ID) (*RecomputeSummary, error)
	ListStatus(ctx context.Context, orgID snowflake.ID) ([]NexusStatus, error)
}

type Repository interface {
	UpsertAll(ctx context.Context, statuses []*NexusStatus) error
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]NexusStatus, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrRecomputeInFlight   = errors.New("recompute_in_flight")
)
