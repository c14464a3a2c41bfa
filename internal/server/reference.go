package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listStates(c *gin.Context) {
	states, err := s.refRepo.ListStates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"states": states})
}

func (s *Server) listTaxRates(c *gin.Context) {
	rates, err := s.refRepo.ListTaxRates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tax_rates": rates})
}
