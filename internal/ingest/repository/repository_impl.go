package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nexorahq/nexora/internal/ingest/domain"
	"github.com/nexorahq/nexora/pkg/db/option"
	pkgrepository "github.com/nexorahq/nexora/pkg/repository"
)

const listRunsLimit = 100

type repository struct {
	store pkgrepository.Repository[domain.IngestionRun]
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{store: pkgrepository.ProvideStore[domain.IngestionRun](db)}
}

func (r *repository) Create(ctx context.Context, run *domain.IngestionRun) error {
	return r.store.Create(ctx, run)
}

func (r *repository) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.IngestionRun, error) {
	rows, err := r.store.Find(ctx, &domain.IngestionRun{OrgID: orgID},
		option.WithSortBy("started_at DESC"),
		option.WithLimit(listRunsLimit),
	)
	if err != nil {
		return nil, err
	}

	runs := make([]domain.IngestionRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, *row)
	}
	return runs, nil
}
