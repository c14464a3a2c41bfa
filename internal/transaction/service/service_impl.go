package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	nexusdomain "github.com/nexorahq/nexora/internal/nexus/domain"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
	"github.com/nexorahq/nexora/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repository transactiondomain.Repository
}

type service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo transactiondomain.Repository
}

func NewService(p ServiceParam) transactiondomain.Service {
	return &service{
		db:   p.DB,
		log:  p.Log.Named("transaction.service"),
		repo: p.Repository,
	}
}

func (s *service) BulkInsert(ctx context.Context, events []*transactiondomain.SalesEvent) (*transactiondomain.BulkInsertResult, error) {
	for _, event := range events {
		if event.OrgID == 0 {
			return nil, transactiondomain.ErrInvalidOrganization
		}
	}

	inserted, err := s.repo.BulkInsert(ctx, events)
	if err != nil {
		return nil, err
	}

	result := &transactiondomain.BulkInsertResult{
		Inserted:   inserted,
		Duplicates: int64(len(events)) - inserted,
	}
	s.log.Info("sales events appended",
		zap.Int64("inserted", result.Inserted),
		zap.Int64("duplicates", result.Duplicates),
	)
	return result, nil
}

func (s *service) List(ctx context.Context, req transactiondomain.ListRequest) (*transactiondomain.ListResponse, error) {
	if req.OrgID == 0 {
		return nil, transactiondomain.ErrInvalidOrganization
	}
	if req.PageSize <= 0 {
		req.PageSize = 50
	}

	events, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	events, pageInfo := pagination.BuildCursorPageInfo(events, req.PageSize, func(e *transactiondomain.SalesEvent) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: e.ID.String()})
		return token
	})

	out := make([]transactiondomain.SalesEvent, 0, len(events))
	for _, e := range events {
		out = append(out, *e)
	}
	return &transactiondomain.ListResponse{
		PageInfo:    *pageInfo,
		SalesEvents: out,
	}, nil
}

func (s *service) OrderedScan(ctx context.Context, orgID snowflake.ID) ([]transactiondomain.SalesEvent, error) {
	if orgID == 0 {
		return nil, transactiondomain.ErrInvalidOrganization
	}
	return s.repo.OrderedScan(ctx, orgID)
}

func (s *service) AggregateByState(ctx context.Context, orgID snowflake.ID) ([]transactiondomain.StateAggregate, error) {
	if orgID == 0 {
		return nil, transactiondomain.ErrInvalidOrganization
	}
	return s.repo.AggregateByState(ctx, orgID)
}

func (s *service) ClearOrg(ctx context.Context, orgID snowflake.ID) error {
	if orgID == 0 {
		return transactiondomain.ErrInvalidOrganization
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ?", orgID).Delete(&transactiondomain.SalesEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("org_id = ?", orgID).Delete(&nexusdomain.NexusStatus{}).Error; err != nil {
			return err
		}
		s.log.Info("organization data cleared", zap.String("org_id", orgID.String()))
		return nil
	})
}
