package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ruledomain "github.com/nexorahq/nexora/internal/rule/domain"
)

func (s *Server) listRules(c *gin.Context) {
	req := ruledomain.ListRequest{
		State:   c.Query("state"),
		SortBy:  c.Query("sort_by"),
		OrderBy: c.Query("order_by"),
	}

	if raw := c.Query("active_on"); raw != "" {
		activeOn, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("active_on", "invalid_request", "expected YYYY-MM-DD"))
			return
		}
		req.ActiveOn = &activeOn
	}

	rules, err := s.ruleSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (s *Server) createRule(c *gin.Context) {
	var req ruledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	rule, err := s.ruleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

func (s *Server) updateRule(c *gin.Context) {
	var req ruledomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}
	req.ID = c.Param("id")

	rule, err := s.ruleSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// disableRule closes the rule's effective window rather than deleting
// it; historical recomputations still see the retired version.
func (s *Server) disableRule(c *gin.Context) {
	endDate := time.Now().UTC()
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("end_date", "invalid_request", "expected YYYY-MM-DD"))
			return
		}
		endDate = parsed
	}

	rule, err := s.ruleSvc.Disable(c.Request.Context(), c.Param("id"), endDate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}
