package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	opportunitydomain "github.com/seb-lewis/startupcrm/internal/opportunity/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
)

func (s *Server) CreateOpportunity(c *gin.Context) {
	var req opportunitydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.opportunityService.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOpportunity(c *gin.Context) {
	resp, err := s.opportunityService.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOpportunities(c *gin.Context) {
	var query struct {
		AccountID string `form:"account_id"`
		Stage     string `form:"stage"`
		SortBy    string `form:"sort_by"`
		OrderBy   string `form:"order_by"`
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, pageInfo, err := s.opportunityService.List(c.Request.Context(), opportunitydomain.ListQuery{
		AccountID:  query.AccountID,
		Stage:      query.Stage,
		SortBy:     query.SortBy,
		OrderBy:    query.OrderBy,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": pageInfo})
}

func (s *Server) UpdateOpportunity(c *gin.Context) {
	var req opportunitydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.opportunityService.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type moveStageRequest struct {
	Stage string `json:"stage"`
}

func (s *Server) MoveOpportunityStage(c *gin.Context) {
	var req moveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.opportunityService.MoveStage(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(req.Stage))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
