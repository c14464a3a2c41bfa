package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nexorahq/nexora/internal/config"
	"github.com/nexorahq/nexora/internal/ingest"
	ingestdomain "github.com/nexorahq/nexora/internal/ingest/domain"
	"github.com/nexorahq/nexora/internal/nexus"
	"github.com/nexorahq/nexora/internal/observability"
	obsmiddleware "github.com/nexorahq/nexora/internal/observability/logger"
	obsmetrics "github.com/nexorahq/nexora/internal/observability/metrics"
	obstracing "github.com/nexorahq/nexora/internal/observability/tracing"
	"github.com/nexorahq/nexora/internal/orgcontext"
	"github.com/nexorahq/nexora/internal/reference"
	referencedomain "github.com/nexorahq/nexora/internal/reference/domain"
	"github.com/nexorahq/nexora/internal/rule"
	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
	"github.com/nexorahq/nexora/internal/singleflight"
	"github.com/nexorahq/nexora/internal/storage"
	"github.com/nexorahq/nexora/internal/transaction"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	reference.Module,
	rule.Module,
	transaction.Module,
	nexus.Module,
	singleflight.Module,
	storage.Module,
	ingest.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log, obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	genID  *snowflake.Node

	ingestSvc ingestdomain.Service
	nexusSvc  *singleflight.Coordinator
	txSvc     transactiondomain.Service
	ruleSvc   ruledomain.Service
	refRepo   referencedomain.Repository
}

type ServerParam struct {
	fx.In

	Engine *gin.Engine
	Cfg    config.Config
	Log    *zap.Logger
	GenID  *snowflake.Node

	IngestSvc ingestdomain.Service
	NexusSvc  *singleflight.Coordinator
	TxSvc     transactiondomain.Service
	RuleSvc   ruledomain.Service
	RefRepo   referencedomain.Repository
}

func NewServer(p ServerParam) *Server {
	s := &Server{
		engine:    p.Engine,
		cfg:       p.Cfg,
		log:       p.Log.Named("http.server"),
		genID:     p.GenID,
		ingestSvc: p.IngestSvc,
		nexusSvc:  p.NexusSvc,
		txSvc:     p.TxSvc,
		ruleSvc:   p.RuleSvc,
		refRepo:   p.RefRepo,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/ingest/runs", s.runIngestion)
	v1.GET("/ingest/runs", s.listIngestionRuns)

	v1.POST("/nexus/recompute", s.recomputeNexus)
	v1.GET("/nexus/status", s.listNexusStatus)

	v1.GET("/sales-events", s.listSalesEvents)
	v1.GET("/sales-events/aggregates", s.listStateAggregates)
	v1.DELETE("/orgs/:org_id/data", s.clearOrgData)

	v1.GET("/nexus-rules", s.listRules)
	v1.POST("/nexus-rules", s.createRule)
	v1.PATCH("/nexus-rules/:id", s.updateRule)
	v1.DELETE("/nexus-rules/:id", s.disableRule)

	v1.GET("/reference/states", s.listStates)
	v1.GET("/reference/tax-rates", s.listTaxRates)
}

// orgIDFromRequest resolves the acting organization from the org_id
// query parameter, falling back to the configured default org. The id
// is attached to the request context for downstream logging.
func (s *Server) orgIDFromRequest(c *gin.Context) (snowflake.ID, error) {
	raw := c.Query("org_id")
	if raw == "" {
		if s.cfg.DefaultOrgID != 0 {
			return s.attachOrg(c, snowflake.ParseInt64(s.cfg.DefaultOrgID)), nil
		}
		return 0, newValidationError("org_id", "invalid_organization", "organization is required")
	}

	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, newValidationError("org_id", "invalid_organization", "invalid organization id")
	}
	return s.attachOrg(c, id), nil
}

func (s *Server) attachOrg(c *gin.Context, id snowflake.ID) snowflake.ID {
	c.Set("org_id", id.String())
	c.Request = c.Request.WithContext(orgcontext.WithOrgID(c.Request.Context(), id))
	return id
}
