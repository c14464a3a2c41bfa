package singleflight

import (
	"context"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexorahq/nexora/internal/nexus/domain"
)

// blockingService parks Recompute until released so tests can hold a
// recomputation in flight.
type blockingService struct {
	started chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (s *blockingService) Recompute(ctx context.Context, orgID snowflake.ID) (*domain.RecomputeSummary, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	s.started <- struct{}{}
	<-s.release
	return &domain.RecomputeSummary{OrgID: orgID.String()}, nil
}

func (s *blockingService) ListStatus(ctx context.Context, orgID snowflake.ID) ([]domain.NexusStatus, error) {
	return nil, nil
}

func TestCoordinator_SecondCallRejectedWhileInFlight(t *testing.T) {
	inner := &blockingService{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	coord := NewCoordinator(zap.NewNop(), inner, nil)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	orgID := node.Generate()

	done := make(chan error, 1)
	go func() {
		_, err := coord.Recompute(context.Background(), orgID)
		done <- err
	}()

	<-inner.started

	_, err = coord.Recompute(context.Background(), orgID)
	assert.ErrorIs(t, err, domain.ErrRecomputeInFlight)

	close(inner.release)
	require.NoError(t, <-done)

	// The guard releases once the first run finishes.
	_, err = coord.Recompute(context.Background(), orgID)
	require.NoError(t, err)
}

func TestCoordinator_DifferentOrgsRunConcurrently(t *testing.T) {
	inner := &blockingService{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	coord := NewCoordinator(zap.NewNop(), inner, nil)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := coord.Recompute(context.Background(), node.Generate())
		done <- err
	}()
	<-inner.started

	// A different org is not blocked by the first org's run. The stub
	// releases both through the shared channel.
	other := make(chan error, 1)
	go func() {
		_, err := coord.Recompute(context.Background(), node.Generate())
		other <- err
	}()

	close(inner.release)
	require.NoError(t, <-done)
	require.NoError(t, <-other)
}
