// Package service orchestrates file ingestion end to end: fetch,
// parse, append, recompute, record.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/nexorahq/nexora/internal/clock"
	"github.com/nexorahq/nexora/internal/importer"
	"github.com/nexorahq/nexora/internal/ingest/domain"
	"github.com/nexorahq/nexora/internal/singleflight"
	"github.com/nexorahq/nexora/internal/storage"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
)

// xlsxMagic is the zip local file header; xlsx workbooks are zip
// containers, so it backstops extension sniffing.
var xlsxMagic = []byte{0x50, 0x4b, 0x03, 0x04}

type ServiceParam struct {
	fx.In

	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Store        storage.ObjectStore
	Transactions transactiondomain.Service
	Nexus        *singleflight.Coordinator
	Repository   domain.Repository
}

type service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	store storage.ObjectStore
	txns  transactiondomain.Service
	nexus *singleflight.Coordinator
	repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &service{
		log:   p.Log.Named("ingest.service"),
		genID: p.GenID,
		clock: p.Clock,
		store: p.Store,
		txns:  p.Transactions,
		nexus: p.Nexus,
		repo:  p.Repository,
	}
}

func (s *service) Run(ctx context.Context, req domain.RunRequest) (*domain.RunResult, error) {
	if req.OrgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if strings.TrimSpace(req.Path) == "" {
		return nil, domain.ErrMissingPath
	}

	run := &domain.IngestionRun{
		ID:        uuid.New(),
		OrgID:     req.OrgID,
		Bucket:    req.Bucket,
		Path:      req.Path,
		StartedAt: s.clock.Now().UTC(),
	}

	result, err := s.run(ctx, req, run)
	if err != nil {
		msg := err.Error()
		run.Status = domain.RunStatusFailed
		run.Error = &msg
		s.finishRun(ctx, run)
		return nil, err
	}

	run.Status = domain.RunStatusSucceeded
	run.RowCount = result.RowCount
	run.Inserted = result.Inserted
	run.Duplicates = result.Duplicates
	run.SkippedRows = result.SkippedRows
	run.InvalidDates = result.InvalidDates
	run.UnknownStates = result.UnknownStates
	if crossed, merr := json.Marshal(result.StatesCrossed); merr == nil {
		run.StatesCrossed = datatypes.JSON(crossed)
	}
	s.finishRun(ctx, run)

	result.RunID = run.ID.String()
	return result, nil
}

func (s *service) run(ctx context.Context, req domain.RunRequest, run *domain.IngestionRun) (*domain.RunResult, error) {
	data, err := s.store.Fetch(ctx, req.Bucket, req.Path)
	if err != nil {
		return nil, err
	}

	mapper := importer.NewMapper(s.genID, s.clock.Now)

	var mapped *importer.Result
	if isXLSX(req.Path, data) {
		mapped, err = mapper.ParseXLSX(data, req.OrgID)
		if err != nil {
			return nil, err
		}
	} else {
		mapped = mapper.ParseCSV(string(data), req.OrgID)
	}

	result := &domain.RunResult{
		RowCount:      mapped.RowCount,
		SkippedRows:   mapped.SkippedRows,
		InvalidDates:  mapped.InvalidDates,
		UnknownStates: mapped.UnknownStates,
		StatesCrossed: []string{},
	}

	if len(mapped.Events) > 0 {
		inserted, err := s.txns.BulkInsert(ctx, mapped.Events)
		if err != nil {
			return nil, err
		}
		result.Inserted = inserted.Inserted
		result.Duplicates = inserted.Duplicates
	}

	summary, err := s.nexus.Recompute(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}
	result.StatesCrossed = summary.StatesCrossed
	result.Success = true

	s.log.Info("ingestion run finished",
		zap.String("org_id", req.OrgID.String()),
		zap.String("path", req.Path),
		zap.Int("rows", result.RowCount),
		zap.Int64("inserted", result.Inserted),
		zap.Int64("duplicates", result.Duplicates),
		zap.Strings("states_crossed", result.StatesCrossed),
	)
	return result, nil
}

func (s *service) ListRuns(ctx context.Context, orgID snowflake.ID) ([]domain.IngestionRun, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListByOrg(ctx, orgID)
}

// finishRun records the run row; the audit trail is best effort and
// never fails the ingestion itself.
func (s *service) finishRun(ctx context.Context, run *domain.IngestionRun) {
	run.FinishedAt = s.clock.Now().UTC()
	if err := s.repo.Create(context.WithoutCancel(ctx), run); err != nil {
		s.log.Error("failed to record ingestion run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	}
}

func isXLSX(name string, data []byte) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx":
		return true
	case ".csv", ".txt":
		return false
	}
	return bytes.HasPrefix(data, xlsxMagic)
}
