package singleflight

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/nexorahq/nexora/internal/nexus/domain"
)

const recomputeLockTTL = 5 * time.Minute

// Coordinator wraps the nexus engine so only one recomputation per org
// runs at a time. With redis configured the guard spans processes;
// without it an in-process keyed mutex covers a single instance.
type Coordinator struct {
	log    *zap.Logger
	inner  domain.Service
	locker *Locker

	mu       sync.Mutex
	inFlight map[snowflake.ID]struct{}
}

func NewCoordinator(log *zap.Logger, inner domain.Service, locker *Locker) *Coordinator {
	return &Coordinator{
		log:      log.Named("nexus.coordinator"),
		inner:    inner,
		locker:   locker,
		inFlight: make(map[snowflake.ID]struct{}),
	}
}

func (c *Coordinator) Recompute(ctx context.Context, orgID snowflake.ID) (*domain.RecomputeSummary, error) {
	release, err := c.acquire(ctx, orgID)
	if err != nil {
		return nil, err
	}
	defer release()

	return c.inner.Recompute(ctx, orgID)
}

func (c *Coordinator) ListStatus(ctx context.Context, orgID snowflake.ID) ([]domain.NexusStatus, error) {
	return c.inner.ListStatus(ctx, orgID)
}

func (c *Coordinator) acquire(ctx context.Context, orgID snowflake.ID) (func(), error) {
	c.mu.Lock()
	if _, busy := c.inFlight[orgID]; busy {
		c.mu.Unlock()
		return nil, domain.ErrRecomputeInFlight
	}
	c.inFlight[orgID] = struct{}{}
	c.mu.Unlock()

	releaseLocal := func() {
		c.mu.Lock()
		delete(c.inFlight, orgID)
		c.mu.Unlock()
	}

	if c.locker == nil {
		return releaseLocal, nil
	}

	key := "nexora:recompute:" + orgID.String()
	token, ok, err := c.locker.TryLock(ctx, key, recomputeLockTTL)
	if err != nil {
		// Redis being down should not block recomputation on a single
		// instance; the local guard still holds.
		c.log.Warn("recompute lock unavailable, proceeding with local guard",
			zap.String("org_id", orgID.String()),
			zap.Error(err),
		)
		return releaseLocal, nil
	}
	if !ok {
		releaseLocal()
		return nil, domain.ErrRecomputeInFlight
	}

	return func() {
		if err := c.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			c.log.Warn("recompute lock release failed",
				zap.String("org_id", orgID.String()),
				zap.Error(err),
			)
		}
		releaseLocal()
	}, nil
}
