package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nexorahq/nexora/internal/clock"
	ingestdomain "github.com/nexorahq/nexora/internal/ingest/domain"
	ingestrepository "github.com/nexorahq/nexora/internal/ingest/repository"
	nexusdomain "github.com/nexorahq/nexora/internal/nexus/domain"
	nexusrepository "github.com/nexorahq/nexora/internal/nexus/repository"
	nexusservice "github.com/nexorahq/nexora/internal/nexus/service"
	"github.com/nexorahq/nexora/internal/reference"
	referencedomain "github.com/nexorahq/nexora/internal/reference/domain"
	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
	rulerepository "github.com/nexorahq/nexora/internal/rule/repository"
	ruleservice "github.com/nexorahq/nexora/internal/rule/service"
	"github.com/nexorahq/nexora/internal/singleflight"
	"github.com/nexorahq/nexora/internal/storage"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
	transactionrepository "github.com/nexorahq/nexora/internal/transaction/repository"
	transactionservice "github.com/nexorahq/nexora/internal/transaction/service"
)

type ingestFixture struct {
	svc     ingestdomain.Service
	nexus   *singleflight.Coordinator
	db      *gorm.DB
	node    *snowflake.Node
	orgID   snowflake.ID
	rootDir string
}

func setupIngest(t *testing.T) *ingestFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&transactiondomain.SalesEvent{},
		&ruledomain.NexusRule{},
		&referencedomain.State{},
		&referencedomain.StateTaxRate{},
		&nexusdomain.NexusStatus{},
		&ingestdomain.IngestionRun{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))

	// One active threshold rule plus a combined rate for liability.
	revenue := 100000.0
	require.NoError(t, db.Create(&ruledomain.NexusRule{
		ID:                       node.Generate(),
		State:                    "CO",
		RevenueThreshold:         &revenue,
		EvaluationPeriodType:     ruledomain.PeriodCalendarYear,
		EffectiveStartDate:       time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC),
		IncludesMarketplaceSales: true,
		IncludesExemptSales:      true,
		CreatedAt:                time.Now().UTC(),
	}).Error)
	require.NoError(t, db.Create(&referencedomain.StateTaxRate{
		State:              "CO",
		CombinedRate:       0.0781,
		EffectiveStartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	txRepo := transactionrepository.NewRepository(db)
	txSvc := transactionservice.NewService(transactionservice.ServiceParam{
		DB:         db,
		Log:        log,
		Repository: txRepo,
	})

	ruleRepo := rulerepository.NewRepository(db)
	resolver := ruleservice.NewResolver(ruleservice.ResolverParam{Repository: ruleRepo})

	refRepo := reference.NewRepository(db)
	nexusRepo := nexusrepository.NewRepository(db)
	nexusSvc := nexusservice.NewService(nexusservice.ServiceParam{
		Log:          log,
		GenID:        node,
		Clock:        clk,
		Repository:   nexusRepo,
		Transactions: txRepo,
		Rules:        resolver,
		Reference:    refRepo,
	})
	coordinator := singleflight.NewCoordinator(log, nexusSvc, nil)

	rootDir := t.TempDir()
	svc := NewService(ServiceParam{
		Log:          log,
		GenID:        node,
		Clock:        clk,
		Store:        storage.NewLocalStore(rootDir),
		Transactions: txSvc,
		Nexus:        coordinator,
		Repository:   ingestrepository.NewRepository(db),
	})

	return &ingestFixture{
		svc:     svc,
		nexus:   coordinator,
		db:      db,
		node:    node,
		orgID:   node.Generate(),
		rootDir: rootDir,
	}
}

func (f *ingestFixture) writeFile(t *testing.T, bucket, path, content string) {
	t.Helper()
	full := filepath.Join(f.rootDir, bucket, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestIngest_EndToEnd(t *testing.T) {
	f := setupIngest(t)
	ctx := context.Background()

	csv := "Order_ID,Order_Date,Total,State\n" +
		"ord-1,2025-01-01,60000,CO\n" +
		"ord-2,2025-01-02,50000,co\n" +
		"ord-3,2025-01-03,500,CO\n"
	f.writeFile(t, "uploads", "q1/sales.csv", csv)

	result, err := f.svc.Run(ctx, ingestdomain.RunRequest{
		OrgID:  f.orgID,
		Bucket: "uploads",
		Path:   "q1/sales.csv",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.RowCount)
	assert.Equal(t, int64(3), result.Inserted)
	assert.Equal(t, int64(0), result.Duplicates)
	assert.Equal(t, []string{"CO"}, result.StatesCrossed)

	statuses, err := f.nexus.ListStatus(ctx, f.orgID)
	require.NoError(t, err)
	require.Len(t, statuses, 1)

	status := statuses[0]
	assert.Equal(t, "CO", status.State)
	assert.Equal(t, 110500.0, status.TotalRevenue)
	assert.Equal(t, int64(3), status.TransactionCount)
	require.NotNil(t, status.CrossedAt)
	assert.Equal(t, time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC), status.CrossedAt.UTC())
	require.NotNil(t, status.CrossedBy)
	assert.Equal(t, nexusdomain.TriggerRevenue, *status.CrossedBy)
	assert.Equal(t, 500.0, status.TaxablePostCross)
	require.NotNil(t, status.EstLiability)
	assert.InDelta(t, 500*0.0781, *status.EstLiability, 1e-9)
}

func TestIngest_RerunIsIdempotent(t *testing.T) {
	f := setupIngest(t)
	ctx := context.Background()

	csv := "transaction_id,transaction_date,amount,ship_to_state\n" +
		"tx-1,2025-01-01,60000,CO\n" +
		"tx-2,2025-01-02,50000,CO\n"
	f.writeFile(t, "uploads", "sales.csv", csv)

	req := ingestdomain.RunRequest{OrgID: f.orgID, Bucket: "uploads", Path: "sales.csv"}

	first, err := f.svc.Run(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.Inserted)

	second, err := f.svc.Run(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Inserted)
	assert.Equal(t, int64(2), second.Duplicates)
	assert.Equal(t, []string{"CO"}, second.StatesCrossed)

	runs, err := f.svc.ListRuns(ctx, f.orgID)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRecompute_RepeatedRunsProduceIdenticalStatus(t *testing.T) {
	f := setupIngest(t)
	ctx := context.Background()

	csv := "transaction_id,transaction_date,amount,ship_to_state\n" +
		"tx-1,2025-01-01,60000,CO\n" +
		"tx-2,2025-01-02,50000,CO\n" +
		"tx-3,2025-01-03,500,CO\n"
	f.writeFile(t, "uploads", "sales.csv", csv)

	_, err := f.svc.Run(ctx, ingestdomain.RunRequest{OrgID: f.orgID, Bucket: "uploads", Path: "sales.csv"})
	require.NoError(t, err)

	first, err := f.nexus.ListStatus(ctx, f.orgID)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// A second pass over the unchanged store must reproduce every
	// status row byte for byte, timestamps aside.
	_, err = f.nexus.Recompute(ctx, f.orgID)
	require.NoError(t, err)

	second, err := f.nexus.ListStatus(ctx, f.orgID)
	require.NoError(t, err)
	require.Len(t, second, len(first))

	for i := range first {
		a, b := first[i], second[i]
		a.LastCalculated = time.Time{}
		b.LastCalculated = time.Time{}
		assert.Equal(t, a, b)
	}
}

func TestIngest_MissingFileRecordsFailedRun(t *testing.T) {
	f := setupIngest(t)
	ctx := context.Background()

	_, err := f.svc.Run(ctx, ingestdomain.RunRequest{
		OrgID:  f.orgID,
		Bucket: "uploads",
		Path:   "missing.csv",
	})
	require.ErrorIs(t, err, storage.ErrObjectNotFound)

	runs, err := f.svc.ListRuns(ctx, f.orgID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, ingestdomain.RunStatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].Error)
}

func TestIngest_UnknownStatesFlaggedNotEvaluated(t *testing.T) {
	f := setupIngest(t)
	ctx := context.Background()

	csv := "transaction_id,transaction_date,amount,ship_to_state\n" +
		"tx-1,2025-01-01,200000,ZZ\n"
	f.writeFile(t, "uploads", "sales.csv", csv)

	result, err := f.svc.Run(ctx, ingestdomain.RunRequest{OrgID: f.orgID, Bucket: "uploads", Path: "sales.csv"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.UnknownStates)
	assert.Empty(t, result.StatesCrossed)

	statuses, err := f.nexus.ListStatus(ctx, f.orgID)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, transactiondomain.StateUnknown, statuses[0].State)
	assert.Nil(t, statuses[0].CrossedAt)
}
