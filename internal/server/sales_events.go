package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
)

func (s *Server) listSalesEvents(c *gin.Context) {
	orgID, err := s.orgIDFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pageSize := 0
	if raw := c.Query("page_size"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 0 {
			AbortWithError(c, newValidationError("page_size", "invalid_request", "invalid page size"))
			return
		}
	}

	resp, err := s.txSvc.List(c.Request.Context(), transactiondomain.ListRequest{
		OrgID:     orgID,
		State:     c.Query("state"),
		PageToken: c.Query("page_token"),
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) listStateAggregates(c *gin.Context) {
	orgID, err := s.orgIDFromRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	aggregates, err := s.txSvc.AggregateByState(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"aggregates": aggregates})
}

// clearOrgData wipes the org's transactions and derived statuses. The
// org id is taken from the path, not the default-org fallback, so the
// destructive call is always explicit.
func (s *Server) clearOrgData(c *gin.Context) {
	orgID, err := snowflake.ParseString(c.Param("org_id"))
	if err != nil {
		AbortWithError(c, newValidationError("org_id", "invalid_organization", "invalid organization id"))
		return
	}
	s.attachOrg(c, orgID)

	if err := s.txSvc.ClearOrg(c.Request.Context(), orgID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
