package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ingestdomain "github.com/nexorahq/nexora/internal/ingest/domain"
)

type runIngestionRequest struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path" binding:"required"`
}

func (s *Server) runIngestion(c *gin.Context) {
	orgID, err := s.orgIDFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req runIngestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	result, err := s.ingestSvc.Run(c.Request.Context(), ingestdomain.RunRequest{
		OrgID:  orgID,
		Bucket: req.Bucket,
		Path:   req.Path,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) listIngestionRuns(c *gin.Context) {
	orgID, err := s.orgIDFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	runs, err := s.ingestSvc.ListRuns(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
