package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, rule *NexusRule) error
	FindByID(ctx context.Context, id snowflake.ID) (*NexusRule, error)
	List(ctx context.Context, filter ListRequest) ([]NexusRule, error)
	// ListByStates returns every rule version for the given states,
	// ordered by state then effective start ascending.
	ListByStates(ctx context.Context, states []string) ([]NexusRule, error)
	Update(ctx context.Context, rule *NexusRule) error
}

type ListRequest struct {
	State    string
	ActiveOn *time.Time
	SortBy   string
	OrderBy  string
}
